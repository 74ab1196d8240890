package internal

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTestImage fills a simple gradient so encoded fixtures are not
// degenerate single-color files.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: uint8((x + y) % 255),
				A: 255,
			})
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, createTestImage(32, 24), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, createTestImage(16, 16)); err != nil {
		t.Fatal(err)
	}
}

type embedCall struct {
	path string
	ts   Timestamp
	loc  Location
}

type fakeTagWriter struct {
	calls []embedCall
	err   error
}

func (f *fakeTagWriter) Embed(ctx context.Context, path string, ts Timestamp, loc Location) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, embedCall{path: path, ts: ts, loc: loc})
	return nil
}

type fakeRemuxer struct {
	calls [][2]string
	err   error
}

func (f *fakeRemuxer) RemuxToMOV(ctx context.Context, src, dst string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, [2]string{src, dst})
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append([]byte("mov:"), data...), 0644)
}

func testRecord(title string, loc Location) *Record {
	taken := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Record{
		Title:     title,
		Timestamp: Timestamp{Taken: taken, Created: taken, Modified: taken.Add(time.Hour)},
		Location:  loc,
	}
}

func TestClassify(t *testing.T) {
	tempDir := t.TempDir()
	cfg := DefaultConfig()

	jpgPath := filepath.Join(tempDir, "photo.jpg")
	writeJPEG(t, jpgPath)
	pngPath := filepath.Join(tempDir, "shot.png")
	writePNG(t, pngPath)
	// Extension lies; decode decides.
	disguised := filepath.Join(tempDir, "actually_a_photo.dat")
	writeJPEG(t, disguised)

	textPath := filepath.Join(tempDir, "notes.txt")
	os.WriteFile(textPath, []byte("not media"), 0644)
	mp4Path := filepath.Join(tempDir, "clip.mp4")
	os.WriteFile(mp4Path, []byte("fake video bytes"), 0644)
	movPath := filepath.Join(tempDir, "clip.mov")
	os.WriteFile(movPath, []byte("fake video bytes"), 0644)
	heicPath := filepath.Join(tempDir, "live.HEIC")
	os.WriteFile(heicPath, []byte("heic container"), 0644)
	webpPath := filepath.Join(tempDir, "sticker.webp")
	os.WriteFile(webpPath, []byte("webp bytes"), 0644)

	testCases := []struct {
		path string
		kind Kind
		ok   bool
	}{
		{jpgPath, KindImage, true},
		{pngPath, KindImage, true},
		{disguised, KindImage, true},
		{heicPath, KindImage, true},
		{mp4Path, KindVideo, true},
		{movPath, KindVideo, true},
		{webpPath, KindGeneric, true},
		{textPath, 0, false},
	}

	for _, tc := range testCases {
		kind, ok := Classify(tc.path, cfg)
		if ok != tc.ok {
			t.Errorf("Classify(%s): ok = %v, want %v", filepath.Base(tc.path), ok, tc.ok)
			continue
		}
		if ok && kind != tc.kind {
			t.Errorf("Classify(%s) = %v, want %v", filepath.Base(tc.path), kind, tc.kind)
		}
	}
}

func TestTargetNameDependsOnlyOnBytesAndKind(t *testing.T) {
	tempDir := t.TempDir()

	a := filepath.Join(tempDir, "IMG_1.jpg")
	b := filepath.Join(tempDir, "renamed_copy.jpg")
	writeJPEG(t, a)
	data, _ := os.ReadFile(a)
	os.WriteFile(b, data, 0644)

	itemA, err := NewItem(a, KindImage)
	if err != nil {
		t.Fatal(err)
	}
	itemB, err := NewItem(b, KindImage)
	if err != nil {
		t.Fatal(err)
	}

	if itemA.Identity != itemB.Identity {
		t.Errorf("identical bytes produced different identities: %s vs %s", itemA.Identity, itemB.Identity)
	}
	if itemA.TargetName() != itemB.TargetName() {
		t.Errorf("identical bytes produced different target names")
	}
	if want := itemA.Identity + ".tiff"; itemA.TargetName() != want {
		t.Errorf("TargetName = %s, want %s", itemA.TargetName(), want)
	}

	// Matching outcome must not change the target.
	itemA.AttachMetadata(testRecord("IMG_1.jpg", Location{}))
	if itemA.TargetName() != itemB.TargetName() {
		t.Errorf("attaching metadata changed the target name")
	}
}

func TestImageSave(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "out")
	os.MkdirAll(outDir, 0755)

	src := filepath.Join(tempDir, "IMG_1.jpg")
	writeJPEG(t, src)
	item, err := NewItem(src, KindImage)
	if err != nil {
		t.Fatal(err)
	}

	tags := &fakeTagWriter{}
	tools := Tools{Tags: tags, Remux: &fakeRemuxer{}}

	// Incomplete metadata: silent skip, nothing written.
	outcome, err := item.Save(context.Background(), outDir, tools)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if outcome != SkippedIncomplete {
		t.Fatalf("outcome = %v, want incomplete", outcome)
	}
	if entries, _ := os.ReadDir(outDir); len(entries) != 0 {
		t.Fatalf("incomplete item wrote %d files", len(entries))
	}

	// Complete: TIFF written, tags embedded.
	item.AttachMetadata(testRecord("IMG_1.jpg", Location{Latitude: 45.07, Longitude: 7.68, Altitude: 240}))
	outcome, err = item.Save(context.Background(), outDir, tools)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if outcome != Saved {
		t.Fatalf("outcome = %v, want saved", outcome)
	}

	target := filepath.Join(outDir, item.Identity+".tiff")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("target not written: %v", err)
	}
	if len(tags.calls) != 1 || tags.calls[0].path != target {
		t.Fatalf("tag writer calls = %+v, want one call on %s", tags.calls, target)
	}

	// Same item again: occupied slot, no second write, no new embed.
	outcome, err = item.Save(context.Background(), outDir, tools)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if outcome != SkippedDuplicate {
		t.Fatalf("outcome = %v, want duplicate", outcome)
	}
	if len(tags.calls) != 1 {
		t.Fatalf("duplicate save re-invoked the tag writer")
	}
}

func TestVideoSaveRemuxesMP4(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "out")
	os.MkdirAll(outDir, 0755)

	src := filepath.Join(tempDir, "clip.mp4")
	os.WriteFile(src, []byte("mp4 payload"), 0644)
	item, err := NewItem(src, KindVideo)
	if err != nil {
		t.Fatal(err)
	}
	item.AttachMetadata(testRecord("clip.mp4", Location{}))

	tags := &fakeTagWriter{}
	remux := &fakeRemuxer{}
	outcome, err := item.Save(context.Background(), outDir, Tools{Tags: tags, Remux: remux})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if outcome != Saved {
		t.Fatalf("outcome = %v, want saved", outcome)
	}

	// Output is named by the original file's hash, not the remuxed bytes.
	wantID, _ := FileIdentity(src)
	target := filepath.Join(outDir, wantID+".mov")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("remuxed target missing: %v", err)
	}
	if len(remux.calls) != 1 || remux.calls[0][1] != target {
		t.Fatalf("remux calls = %+v, want one into %s", remux.calls, target)
	}
	if len(tags.calls) != 1 || tags.calls[0].path != target {
		t.Fatalf("tags embedded on %+v, want %s", tags.calls, target)
	}
}

func TestVideoSaveCopiesMOV(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "out")
	os.MkdirAll(outDir, 0755)

	payload := []byte("already a mov")
	src := filepath.Join(tempDir, "clip.mov")
	os.WriteFile(src, payload, 0644)
	item, err := NewItem(src, KindVideo)
	if err != nil {
		t.Fatal(err)
	}
	item.AttachMetadata(testRecord("clip.mov", Location{}))

	remux := &fakeRemuxer{}
	outcome, err := item.Save(context.Background(), outDir, Tools{Tags: &fakeTagWriter{}, Remux: remux})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if outcome != Saved {
		t.Fatalf("outcome = %v, want saved", outcome)
	}
	if len(remux.calls) != 0 {
		t.Fatalf("MOV source should not be remuxed")
	}

	got, err := os.ReadFile(filepath.Join(outDir, item.Identity+".mov"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("copied bytes differ from source")
	}
}

func TestVideoSaveRemuxFailure(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "out")
	os.MkdirAll(outDir, 0755)

	src := filepath.Join(tempDir, "clip.mp4")
	os.WriteFile(src, []byte("mp4 payload"), 0644)
	item, _ := NewItem(src, KindVideo)
	item.AttachMetadata(testRecord("clip.mp4", Location{}))

	toolErr := &ExternalToolError{Tool: "ffmpeg", Path: src, Err: errors.New("exit status 1")}
	remux := &fakeRemuxer{err: toolErr}
	_, err := item.Save(context.Background(), outDir, Tools{Tags: &fakeTagWriter{}, Remux: remux})
	if !IsToolError(err) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestGenericSave(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "out")
	os.MkdirAll(outDir, 0755)

	src := filepath.Join(tempDir, "sticker.WEBP")
	os.WriteFile(src, []byte("webp bytes"), 0644)
	item, err := NewItem(src, KindGeneric)
	if err != nil {
		t.Fatal(err)
	}

	// Incomplete metadata is a contract violation for the generic variant.
	tags := &fakeTagWriter{}
	_, err = item.Save(context.Background(), outDir, Tools{Tags: tags, Remux: &fakeRemuxer{}})
	var malformed *MalformedMetadataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedMetadataError, got %v", err)
	}

	item.AttachMetadata(testRecord("sticker.WEBP", Location{}))
	outcome, err := item.Save(context.Background(), outDir, Tools{Tags: tags, Remux: &fakeRemuxer{}})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if outcome != Saved {
		t.Fatalf("outcome = %v, want saved", outcome)
	}

	// Extension is lowercased, no tags embedded.
	if _, err := os.Stat(filepath.Join(outDir, item.Identity+".webp")); err != nil {
		t.Fatalf("generic target missing: %v", err)
	}
	if len(tags.calls) != 0 {
		t.Fatalf("generic save must not invoke the tag writer")
	}
}

func TestDedupAcrossItems(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "out")
	os.MkdirAll(outDir, 0755)

	// Three identical files under different names.
	first := filepath.Join(tempDir, "a.jpg")
	writeJPEG(t, first)
	data, _ := os.ReadFile(first)
	var items []*Item
	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		path := filepath.Join(tempDir, name)
		if i > 0 {
			os.WriteFile(path, data, 0644)
		}
		item, err := NewItem(path, KindImage)
		if err != nil {
			t.Fatal(err)
		}
		item.AttachMetadata(testRecord(name, Location{}))
		items = append(items, item)
	}

	saved, dups := 0, 0
	for _, item := range items {
		outcome, err := item.Save(context.Background(), outDir, Tools{Tags: &fakeTagWriter{}, Remux: &fakeRemuxer{}})
		if err != nil {
			t.Fatal(err)
		}
		switch outcome {
		case Saved:
			saved++
		case SkippedDuplicate:
			dups++
		}
	}
	if saved != 1 || dups != 2 {
		t.Fatalf("saved = %d, duplicates = %d, want 1 and 2", saved, dups)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 1 {
		t.Fatalf("output holds %d files, want exactly 1", len(entries))
	}
}

func TestKindAndOutcomeStrings(t *testing.T) {
	for _, tc := range []struct {
		got, want string
	}{
		{KindImage.String(), "image"},
		{KindVideo.String(), "video"},
		{KindGeneric.String(), "generic"},
		{Saved.String(), "saved"},
		{SkippedDuplicate.String(), "duplicate"},
		{SkippedIncomplete.String(), "incomplete"},
	} {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
