//go:build !linux

package fileio

// IOURing is unavailable off Linux; NewIOURing always fails.
type IOURing struct{ OS }

func NewIOURing(entries uint) (*IOURing, error) { return nil, ErrUringUnsupported }

func (*IOURing) Close() error { return nil }

// Ring is unavailable off Linux; NewRing always fails.
type Ring struct{ OS }

func NewRing(entries uint32) (*Ring, error) { return nil, ErrUringUnsupported }

func (*Ring) Close() error { return nil }
