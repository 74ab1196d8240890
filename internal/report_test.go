package internal

import (
	"strings"
	"testing"
)

func TestReportRender(t *testing.T) {
	r := &Report{
		Scanned:    10,
		Records:    4,
		Media:      5,
		Saved:      3,
		Incomplete: 1,
		Warnings:   []string{"malformed metadata in /t/metadata.json: missing title"},
		Duplicates: []string{"/t/copy_of_a.jpg"},
		Unmatched:  []string{"/t/IMG_9.jpg"},
	}

	out := r.Render()
	for _, want := range []string{
		"Scanned 10 files",
		"Saved 3",
		"missing title",
		"/t/copy_of_a.jpg",
		"/t/IMG_9.jpg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Tool failures") {
		t.Errorf("empty failure list rendered a section:\n%s", out)
	}
	if r.HasFailures() {
		t.Errorf("HasFailures = true with no failures")
	}

	r.Failures = append(r.Failures, "/t/clip.mp4: ffmpeg failed")
	if !r.HasFailures() {
		t.Errorf("HasFailures = false after recording a failure")
	}
	if !strings.Contains(r.Render(), "Tool failures") {
		t.Errorf("failure section not rendered")
	}
}
