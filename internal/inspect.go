package internal

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	exiftool "github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
)

// InspectOptions configures collection inspection.
type InspectOptions struct {
	Format string // table, json
	Deep   bool   // also read container tags through exiftool
}

// ExtStats aggregates one output extension.
type ExtStats struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"total_size_bytes"`
}

// CollectionStats summarizes an organized output collection.
type CollectionStats struct {
	Path        string               `json:"path"`
	TotalFiles  int                  `json:"total_files"`
	TotalSize   int64                `json:"total_size_bytes"`
	ByExtension map[string]*ExtStats `json:"by_extension"`

	WithDate int       `json:"with_date"`
	Earliest time.Time `json:"earliest,omitzero"`
	Latest   time.Time `json:"latest,omitzero"`

	// Deep pass only.
	WithGPS int `json:"with_gps,omitempty"`
}

// InspectCollection walks an organized output directory and aggregates
// per-extension counts, sizes and the embedded date range.
func InspectCollection(dir string, opts InspectOptions) (*CollectionStats, error) {
	stats := &CollectionStats{
		Path:        dir,
		ByExtension: make(map[string]*ExtStats),
	}
	var deepPaths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		es := stats.ByExtension[ext]
		if es == nil {
			es = &ExtStats{}
			stats.ByExtension[ext] = es
		}
		es.Count++
		es.TotalSize += info.Size()
		stats.TotalFiles++
		stats.TotalSize += info.Size()

		switch ext {
		case ".tiff", ".tif", ".jpg", ".jpeg":
			if taken, err := exifDateOriginal(path); err == nil {
				stats.recordDate(taken)
			}
		default:
			if opts.Deep {
				deepPaths = append(deepPaths, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", dir, err)
	}

	if opts.Deep && len(deepPaths) > 0 {
		if err := stats.deepPass(deepPaths); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *CollectionStats) recordDate(t time.Time) {
	s.WithDate++
	if s.Earliest.IsZero() || t.Before(s.Earliest) {
		s.Earliest = t
	}
	if s.Latest.IsZero() || t.After(s.Latest) {
		s.Latest = t
	}
}

// exifDateOriginal reads DateTimeOriginal straight from the file; goexif
// understands both JPEG and TIFF containers.
func exifDateOriginal(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, err
	}
	dateStr, err := tag.StringVal()
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse("2006:01:02 15:04:05", dateStr)
}

// deepPass reads tags goexif cannot (MOV and friends) through exiftool,
// and counts GPS coverage across the collection.
func (s *CollectionStats) deepPass(paths []string) error {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return fmt.Errorf("start exiftool: %w", err)
	}
	defer et.Close()

	for _, fm := range et.ExtractMetadata(paths...) {
		if fm.Err != nil {
			continue
		}
		if _, err := fm.GetString("GPSLatitude"); err == nil {
			s.WithGPS++
		}
		for _, key := range []string{"DateTimeOriginal", "CreateDate", "MediaCreateDate"} {
			v, err := fm.GetString(key)
			if err != nil {
				continue
			}
			if t, err := time.Parse("2006:01:02 15:04:05", v); err == nil {
				s.recordDate(t)
				break
			}
		}
	}
	return nil
}

// RenderStats formats stats per the requested format.
func RenderStats(stats *CollectionStats, opts InspectOptions) (string, error) {
	if opts.Format == "json" {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Collection: %s\n", stats.Path)
	fmt.Fprintf(&b, "Files: %d (%.1f MB)\n", stats.TotalFiles, float64(stats.TotalSize)/(1<<20))

	exts := make([]string, 0, len(stats.ByExtension))
	for ext := range stats.ByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		es := stats.ByExtension[ext]
		fmt.Fprintf(&b, "  %-8s %5d files  %10d bytes\n", ext, es.Count, es.TotalSize)
	}

	if stats.WithDate > 0 {
		fmt.Fprintf(&b, "Dated: %d items, %s to %s\n", stats.WithDate,
			stats.Earliest.Format("2006-01-02"), stats.Latest.Format("2006-01-02"))
	}
	if opts.Deep {
		fmt.Fprintf(&b, "With GPS: %d\n", stats.WithGPS)
	}
	return b.String(), nil
}
