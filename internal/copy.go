package internal

import (
	"errors"
	"io"
	"os"
)

// claimTarget atomically claims an output slot. The create-if-absent keeps
// two items with the same identity from both filling the slot; EEXIST means
// another file already owns it.
func claimTarget(path string) (*os.File, bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return f, true, nil
}

// copyInto streams src into an already-claimed slot. The slot is removed on
// failure so a half-written file never occupies an identity.
func copyInto(src string, dst *os.File) error {
	in, err := os.Open(src)
	if err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return err
	}
	defer in.Close()

	if _, err := io.Copy(dst, in); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return err
	}
	return dst.Close()
}
