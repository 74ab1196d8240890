package internal

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// Identity computes the SHA256 hex digest of everything read from r.
// Identical bytes always yield the identical digest, regardless of where
// they came from; the digest is both the dedup key and the output filename
// stem.
func Identity(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileIdentity streams a file through the hash exactly once.
func FileIdentity(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Identity(f)
}
