package parser

import (
	"fmt"
	"io"
	"os"
)

// spool copies r into a temp file for libraries that need a path or a
// ReadSeeker with a known size. The caller must call cleanup.
func spool(r io.Reader, pattern string) (path string, size int64, cleanup func(), err error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", 0, nil, fmt.Errorf("create temp file: %w", err)
	}
	path = tmp.Name()
	cleanup = func() { os.Remove(path) }

	size, err = io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", 0, nil, fmt.Errorf("write temp file: %w", err)
	}
	return path, size, cleanup, nil
}
