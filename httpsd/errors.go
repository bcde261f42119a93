package httpsd

import "errors"

var (
	ErrEmptyRequest    = errors.New("httpsd: empty request")
	ErrRequestTooLarge = errors.New("httpsd: request too large")
	ErrServerClosed    = errors.New("httpsd: server closed")
	ErrNoTLSConfig     = errors.New("httpsd: no TLS config")
	ErrBadRoot         = errors.New("httpsd: website root must be an existing absolute directory")
)
