// Package fileio provides the file-system collaborators used to resolve
// and serve responses: an existence check and a whole-file read.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrUringUnsupported = errors.New("fileio: io_uring is not supported on this platform")
	ErrShortRead        = errors.New("fileio: short read")
	ErrNotRegular       = errors.New("fileio: not a regular file")
)

// Files reads and probes files on behalf of the server.
// Implementations must be safe for concurrent use.
type Files interface {
	ReadFile(path string) ([]byte, error)
	// Exists reports whether path names a regular file.
	Exists(path string) bool
}

// Reader kinds accepted by Open.
const (
	KindOS      = "os"
	KindIOURing = "iouring"
	KindRing    = "uring"
)

// ringEntries is the submission queue depth for both io_uring backends.
const ringEntries = 32

// OS reads through the os package.
type OS struct{}

func (OS) ReadFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	return os.ReadFile(path)
}

func (OS) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Open returns the Files implementation named by kind together with a
// Closer releasing any kernel resources it holds.
func Open(kind string) (Files, io.Closer, error) {
	switch kind {
	case "", KindOS:
		return OS{}, nopCloser{}, nil
	case KindIOURing:
		r, err := NewIOURing(ringEntries)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case KindRing:
		r, err := NewRing(ringEntries)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return nil, nil, fmt.Errorf("fileio: unknown reader %q", kind)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openRegular opens path and returns it with its size, refusing anything
// that is not a regular file.
func openRegular(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if !fi.Mode().IsRegular() {
		f.Close()
		return nil, 0, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	return f, fi.Size(), nil
}
