package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layouts Google Photos uses for the "formatted" sidecar timestamps.
// Tried in order before falling back to the generic parser.
var takeoutLayouts = []string{
	"Jan 2, 2006, 3:04:05 PM MST",
	"Jan 2, 2006, 3:04:05 PM",
	"2 Jan 2006, 15:04:05 MST",
	time.RFC3339,
}

// parseFormatted parses a human-formatted Takeout timestamp. Newer exports
// use U+202F (narrow no-break space) before AM/PM; those are normalized to
// plain spaces first.
func parseFormatted(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\u202f", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range takeoutLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", s, err)
	}
	return t, nil
}
