//go:build linux

package fileio

import (
	"fmt"
	"sync"

	"github.com/godzie44/go-uring/uring"
	"github.com/iceber/iouring-go"
)

// IOURing reads files with pread submissions on an iceber/iouring-go ring.
type IOURing struct {
	OS
	iour *iouring.IOURing
}

// NewIOURing creates a ring with the given submission queue depth.
func NewIOURing(entries uint) (*IOURing, error) {
	iour, err := iouring.New(entries)
	if err != nil {
		return nil, fmt.Errorf("fileio: init io_uring: %w", err)
	}
	return &IOURing{iour: iour}, nil
}

func (r *IOURing) ReadFile(path string) ([]byte, error) {
	f, size, err := openRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size)
	fd := int(f.Fd())
	var off int64
	for off < size {
		ch := make(chan iouring.Result, 1)
		if _, err := r.iour.SubmitRequest(iouring.Pread(fd, buf[off:], uint64(off)), ch); err != nil {
			return nil, fmt.Errorf("fileio: submit read %s: %w", path, err)
		}
		result := <-ch
		n, err := result.ReturnInt()
		if err != nil {
			return nil, fmt.Errorf("fileio: read %s: %w", path, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%s at %d of %d: %w", path, off, size, ErrShortRead)
		}
		off += int64(n)
	}
	return buf, nil
}

func (r *IOURing) Close() error {
	if r.iour == nil {
		return nil
	}
	err := r.iour.Close()
	r.iour = nil
	return err
}

// Ring reads files with read SQEs on a godzie44/go-uring ring. The ring is
// not safe for concurrent submission, so reads are serialized.
type Ring struct {
	OS
	mu   sync.Mutex
	ring *uring.Ring
}

// NewRing creates a ring with the given submission queue depth.
func NewRing(entries uint32) (*Ring, error) {
	ring, err := uring.New(entries)
	if err != nil {
		return nil, fmt.Errorf("fileio: init io_uring: %w", err)
	}
	return &Ring{ring: ring}, nil
}

func (r *Ring) ReadFile(path string) ([]byte, error) {
	f, size, err := openRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	buf := make([]byte, size)
	var off int64
	for off < size {
		if err := r.ring.QueueSQE(uring.Read(f.Fd(), buf[off:], uint64(off)), 0, 0); err != nil {
			return nil, fmt.Errorf("fileio: queue read %s: %w", path, err)
		}
		if _, err := r.ring.Submit(); err != nil {
			return nil, fmt.Errorf("fileio: submit read %s: %w", path, err)
		}
		cqe, err := r.ring.WaitCQEvents(1)
		if err != nil {
			return nil, fmt.Errorf("fileio: wait read %s: %w", path, err)
		}
		if err := cqe.Error(); err != nil {
			r.ring.SeenCQE(cqe)
			return nil, fmt.Errorf("fileio: read %s: %w", path, err)
		}
		n := int64(cqe.Res)
		r.ring.SeenCQE(cqe)
		if n == 0 {
			return nil, fmt.Errorf("%s at %d of %d: %w", path, off, size, ErrShortRead)
		}
		off += n
	}
	return buf, nil
}

func (r *Ring) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ring == nil {
		return nil
	}
	err := r.ring.Close()
	r.ring = nil
	return err
}
