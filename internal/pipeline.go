package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Pipeline walks a takeout tree, matches media to sidecar records by title
// and saves matched items into a flat content-addressed output directory.
// Single-threaded, one pass, no retries across items.
type Pipeline struct {
	Config *Config
	Tools  Tools
	Log    zerolog.Logger

	// FailFast restores run-halting on external tool errors. The default
	// records the failure and continues with the next item.
	FailFast bool
}

// Run executes one pass over sourceDir into outDir and returns the
// accumulated report. The returned error is nil unless the run itself could
// not proceed (bad directories, cancellation, or a tool failure in
// fail-fast mode).
func (p *Pipeline) Run(ctx context.Context, sourceDir, outDir string) (*Report, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	report := &Report{}
	index, items, err := p.discover(sourceDir, report)
	if err != nil {
		return report, err
	}
	report.Records = recordCount(index)
	report.Media = len(items)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		records := index[item.Title]
		if len(records) == 0 {
			report.Unmatched = append(report.Unmatched, item.Path)
			p.Log.Debug().Str("path", item.Path).Msg("no sidecar matched")
			continue
		}
		// All same-titled records apply in encounter order; last one wins.
		for _, rec := range records {
			item.AttachMetadata(rec)
		}

		outcome, err := item.Save(ctx, outDir, p.Tools)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", item.Path, err))
			p.Log.Error().Err(err).Str("path", item.Path).Msg("save failed")
			if p.FailFast {
				return report, err
			}
			continue
		}

		switch outcome {
		case Saved:
			report.Saved++
			p.Log.Info().Str("path", item.Path).Str("target", item.TargetName()).Msg("saved")
		case SkippedDuplicate:
			report.Duplicates = append(report.Duplicates, item.Path)
			p.Log.Warn().Str("path", item.Path).Msg("duplicate content, slot occupied")
		case SkippedIncomplete:
			report.Incomplete++
		}
	}

	return report, nil
}

// discover walks the tree once, splitting regular files into the metadata
// index (one-to-many by title) and the media list. Sidecars that fail to
// parse become warnings; files that are neither sidecar nor media are
// dropped silently.
func (p *Pipeline) discover(sourceDir string, report *Report) (map[string][]*Record, []*Item, error) {
	index := make(map[string][]*Record)
	var items []*Item

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		report.Scanned++

		if strings.HasSuffix(d.Name(), p.Config.SidecarSuffix) {
			rec, err := ParseRecord(path)
			if err != nil {
				report.Warnings = append(report.Warnings, err.Error())
				p.Log.Warn().Err(err).Str("path", path).Msg("sidecar dropped")
				return nil
			}
			index[rec.Title] = append(index[rec.Title], rec)
			return nil
		}

		kind, ok := Classify(path, p.Config)
		if !ok {
			return nil
		}
		item, err := NewItem(path, kind)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", path, err))
			p.Log.Warn().Err(err).Str("path", path).Msg("media dropped")
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", sourceDir, err)
	}
	return index, items, nil
}

func recordCount(index map[string][]*Record) int {
	n := 0
	for _, recs := range index {
		n += len(recs)
	}
	return n
}

// IsToolError reports whether err came from an external process.
func IsToolError(err error) bool {
	var te *ExternalToolError
	return errors.As(err, &te)
}
