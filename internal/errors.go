package internal

import (
	"fmt"
	"strings"
)

// MalformedMetadataError marks a sidecar file missing one of the required
// subtrees, or an item that reached tag embedding without complete metadata.
type MalformedMetadataError struct {
	Path string
	Err  error
}

func (e *MalformedMetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed metadata in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("malformed metadata in %s", e.Path)
}

func (e *MalformedMetadataError) Unwrap() error { return e.Err }

// ExternalToolError reports a non-zero exit or timeout from an external
// process (exiftool, ffmpeg) invoked against Path.
type ExternalToolError struct {
	Tool   string
	Path   string
	Output string
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s failed on %s: %v", e.Tool, e.Path, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }
