package internal

import (
	"fmt"
	"strings"
)

// Report accumulates everything a run wants to tell the user. It is built
// by Run and returned to the caller; there is no module-level state.
type Report struct {
	Scanned    int // regular files seen
	Records    int // sidecars parsed into the index
	Media      int // media items discovered
	Saved      int
	Incomplete int // silent metadata-incomplete skips

	Warnings   []string // unparseable or unreadable sidecars
	Duplicates []string // source paths whose identity slot was taken
	Unmatched  []string // media with no sidecar title match
	Failures   []string // per-item external tool failures
}

func (r *Report) HasFailures() bool { return len(r.Failures) > 0 }

// Render produces the end-of-run summary.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scanned %d files: %d metadata records, %d media items\n", r.Scanned, r.Records, r.Media)
	fmt.Fprintf(&b, "Saved %d, duplicates %d, unmatched %d, incomplete %d, failures %d\n",
		r.Saved, len(r.Duplicates), len(r.Unmatched), r.Incomplete, len(r.Failures))

	writeList := func(header string, entries []string) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", header)
		for _, e := range entries {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	writeList("Warnings", r.Warnings)
	writeList("Duplicates (not overwritten)", r.Duplicates)
	writeList("Unmatched (no sidecar title matched)", r.Unmatched)
	writeList("Tool failures", r.Failures)

	return b.String()
}
