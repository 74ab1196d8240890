package internal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// exifTimeLayout is the date format exiftool expects for writes.
const exifTimeLayout = "2006:01:02 15:04:05-07:00"

// TagWriter embeds timestamp and location tags into an already-placed
// output file.
type TagWriter interface {
	Embed(ctx context.Context, path string, ts Timestamp, loc Location) error
}

// Remuxer repackages a video into a MOV container without re-encoding.
type Remuxer interface {
	RemuxToMOV(ctx context.Context, src, dst string) error
}

// Tools bundles the external collaborators a save needs.
type Tools struct {
	Tags  TagWriter
	Remux Remuxer
}

// ExifTool drives the exiftool binary for tag writes. Arguments are always
// built as a vector, never interpolated into a shell string.
type ExifTool struct {
	Bin     string
	Timeout time.Duration
}

func NewExifTool(bin string, timeout time.Duration) *ExifTool {
	if bin == "" {
		bin = "exiftool"
	}
	return &ExifTool{Bin: bin, Timeout: timeout}
}

// embedArgs builds the exiftool argument vector for one file. GPS tags are
// omitted when the location is the all-zero "no GPS data" sentinel.
func embedArgs(path string, ts Timestamp, loc Location) []string {
	args := []string{
		"-overwrite_original",
		"-DateTimeOriginal=" + ts.Taken.Format(exifTimeLayout),
		"-CreateDate=" + ts.Created.Format(exifTimeLayout),
		"-ModifyDate=" + ts.Modified.Format(exifTimeLayout),
	}
	if !loc.IsZero() {
		args = append(args,
			fmt.Sprintf("-GPSLatitude=%v", loc.Latitude),
			fmt.Sprintf("-GPSLongitude=%v", loc.Longitude),
			fmt.Sprintf("-GPSAltitude=%v", loc.Altitude),
		)
	}
	return append(args, path)
}

// Embed writes the date tags (and GPS tags when present) into path, then
// sets the filesystem created/modified times to match. An incomplete
// timestamp here is a caller bug, reported as malformed metadata.
func (e *ExifTool) Embed(ctx context.Context, path string, ts Timestamp, loc Location) error {
	if ts.IsZero() {
		return &MalformedMetadataError{Path: path, Err: fmt.Errorf("embed called without metadata")}
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.Bin, embedArgs(path, ts, loc)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &ExternalToolError{Tool: e.Bin, Path: path, Output: string(out), Err: err}
	}

	if err := os.Chtimes(path, ts.Created, ts.Modified); err != nil {
		return fmt.Errorf("set times on %s: %w", path, err)
	}
	return nil
}

// FFmpeg drives the ffmpeg binary for container remuxes.
type FFmpeg struct {
	Bin     string
	Timeout time.Duration
}

func NewFFmpeg(bin string, timeout time.Duration) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{Bin: bin, Timeout: timeout}
}

// remuxArgs stream-copies every stream into a MOV container; no re-encode.
func remuxArgs(src, dst string) []string {
	return []string{"-i", src, "-map", "0", "-c", "copy", "-f", "mov", "-y", dst}
}

func (f *FFmpeg) RemuxToMOV(ctx context.Context, src, dst string) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.Bin, remuxArgs(src, dst)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(dst)
		return &ExternalToolError{Tool: f.Bin, Path: src, Output: string(out), Err: err}
	}
	return nil
}

// CheckTools verifies the external binaries are reachable before a run.
func CheckTools(exiftoolBin, ffmpegBin string) error {
	for _, bin := range []string{exiftoolBin, ffmpegBin} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found in PATH: %w", bin, err)
		}
	}
	return nil
}
