package internal

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdeng/goheif"
	"golang.org/x/image/tiff"
)

// Kind is the discovered media variant. It decides the normalized output
// extension and the save path taken.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "generic"
	}
}

// Outcome is the result of saving one item into the output directory.
type Outcome int

const (
	Saved Outcome = iota
	SkippedDuplicate
	SkippedIncomplete
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case SkippedDuplicate:
		return "duplicate"
	default:
		return "incomplete"
	}
}

// Item is one discovered media file. Identity is computed once at discovery;
// the only later mutation is attaching metadata after a title match.
type Item struct {
	Path     string
	Title    string
	Kind     Kind
	Identity string

	timestamp Timestamp
	location  Location
	matched   bool
}

// Classify decides what a file is. HEIC containers are images the generic
// decoder cannot open, so they classify by extension; everything else must
// actually decode as a still image. Videos and passthrough formats go by
// the configured extension sets. Anything else is not media.
func Classify(path string, cfg *Config) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".heic" || ext == ".heif" {
		return KindImage, true
	}
	if decodesAsImage(path) {
		return KindImage, true
	}
	for _, e := range cfg.VideoExt {
		if ext == e {
			return KindVideo, true
		}
	}
	for _, e := range cfg.GenericExt {
		if ext == e {
			return KindGeneric, true
		}
	}
	return 0, false
}

func decodesAsImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, _, err = image.DecodeConfig(f)
	return err == nil
}

// NewItem builds an item for a classified file, streaming it through the
// content hash exactly once.
func NewItem(path string, kind Kind) (*Item, error) {
	id, err := FileIdentity(path)
	if err != nil {
		return nil, err
	}
	return &Item{
		Path:     path,
		Title:    filepath.Base(path),
		Kind:     kind,
		Identity: id,
	}, nil
}

// AttachMetadata pairs the item with a sidecar record. Last write wins when
// several records share the title.
func (it *Item) AttachMetadata(rec *Record) {
	it.timestamp = rec.Timestamp
	it.location = rec.Location
	it.matched = true
}

// MetadataComplete reports whether both timestamp and location are attached.
func (it *Item) MetadataComplete() bool { return it.matched }

// TargetName is the deterministic output filename: identity plus normalized
// extension. It depends only on file bytes and kind, never on matching.
func (it *Item) TargetName() string {
	switch it.Kind {
	case KindImage:
		return it.Identity + ".tiff"
	case KindVideo:
		return it.Identity + ".mov"
	default:
		return it.Identity + strings.ToLower(filepath.Ext(it.Path))
	}
}

// Save materializes the item into outDir under its content-addressed name.
// Occupied slots are never overwritten.
func (it *Item) Save(ctx context.Context, outDir string, tools Tools) (Outcome, error) {
	switch it.Kind {
	case KindImage:
		return it.saveImage(ctx, outDir, tools)
	case KindVideo:
		return it.saveVideo(ctx, outDir, tools)
	default:
		return it.saveGeneric(outDir)
	}
}

// saveImage re-encodes the source losslessly as TIFF, then embeds tags.
// Incomplete metadata is a silent skip: unmetadata'd media never reaches
// the output set.
func (it *Item) saveImage(ctx context.Context, outDir string, tools Tools) (Outcome, error) {
	img, err := decodeImage(it.Path)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", it.Path, err)
	}

	target := filepath.Join(outDir, it.TargetName())
	if _, err := os.Stat(target); err == nil {
		return SkippedDuplicate, nil
	}
	if !it.MetadataComplete() {
		return SkippedIncomplete, nil
	}

	f, claimed, err := claimTarget(target)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return SkippedDuplicate, nil
	}
	if err := tiff.Encode(f, img, nil); err != nil {
		f.Close()
		os.Remove(target)
		return 0, fmt.Errorf("encode %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	if err := tools.Tags.Embed(ctx, target, it.timestamp, it.location); err != nil {
		return 0, err
	}
	return Saved, nil
}

// saveVideo remuxes MP4 sources into a MOV container (stream copy) and
// byte-copies MOV sources, then embeds tags. The remux writes straight into
// the target slot, so the copy is skipped when source and target coincide.
func (it *Item) saveVideo(ctx context.Context, outDir string, tools Tools) (Outcome, error) {
	if !it.MetadataComplete() {
		return SkippedIncomplete, nil
	}

	target := filepath.Join(outDir, it.TargetName())
	if _, err := os.Stat(target); err == nil {
		return SkippedDuplicate, nil
	}

	src := it.Path
	if strings.ToLower(filepath.Ext(src)) == ".mp4" {
		if err := tools.Remux.RemuxToMOV(ctx, src, target); err != nil {
			return 0, err
		}
		src = target
	}

	if src != target {
		f, claimed, err := claimTarget(target)
		if err != nil {
			return 0, err
		}
		if !claimed {
			return SkippedDuplicate, nil
		}
		if err := copyInto(src, f); err != nil {
			return 0, err
		}
	}

	if err := tools.Tags.Embed(ctx, target, it.timestamp, it.location); err != nil {
		return 0, err
	}
	return Saved, nil
}

// saveGeneric byte-copies formats outside the image/video conversion paths.
// No EXIF concept applies, so the tag writer is never invoked; reaching here
// without metadata is a contract violation rather than a silent skip.
func (it *Item) saveGeneric(outDir string) (Outcome, error) {
	if !it.MetadataComplete() {
		return 0, &MalformedMetadataError{Path: it.Path, Err: fmt.Errorf("save called without metadata")}
	}

	target := filepath.Join(outDir, it.TargetName())
	if _, err := os.Stat(target); err == nil {
		return SkippedDuplicate, nil
	}

	f, claimed, err := claimTarget(target)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return SkippedDuplicate, nil
	}
	if err := copyInto(it.Path, f); err != nil {
		return 0, err
	}
	return Saved, nil
}

// decodeImage opens a still image, taking the dedicated HEIC path for
// containers the generic decoder cannot handle.
func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".heic" || ext == ".heif" {
		return goheif.Decode(f)
	}
	img, _, err := image.Decode(f)
	return img, err
}
