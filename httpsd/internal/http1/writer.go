package http1

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// MaxHeaderBytes is the hard cap on a composed response header.
const MaxHeaderBytes = 1 << 10

var (
	ErrHeaderOverflow    = errors.New("http1: response header overflow")
	ErrUnsupportedStatus = errors.New("http1: unsupported status code")
)

// Reason returns the reason phrase for one of the served status codes,
// or "" for any other code.
func Reason(code int) string {
	switch code {
	case 200:
		return "OK"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	default:
		return ""
	}
}

// headerBuffer accumulates header segments up to max bytes.
type headerBuffer struct {
	buf []byte
	max int
}

func (h *headerBuffer) append(seg string) error {
	if len(h.buf)+len(seg) > h.max {
		return ErrHeaderOverflow
	}
	h.buf = append(h.buf, seg...)
	return nil
}

// BuildHeader composes the complete response header for status: status
// line, Server line and the Content-Type fragment for path, which also
// ends the header block. It returns ErrHeaderOverflow and no bytes if the
// header would exceed MaxHeaderBytes.
func BuildHeader(status int, server, path string) ([]byte, error) {
	return buildHeader(status, server, path, MaxHeaderBytes)
}

func buildHeader(status int, server, path string, limit int) ([]byte, error) {
	reason := Reason(status)
	if reason == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedStatus, status)
	}
	h := headerBuffer{buf: make([]byte, 0, 128), max: limit}
	segs := [...]string{
		fmt.Sprintf("HTTP/1.1 %d %s\r\n", status, reason),
		"Server: " + sanitizeHeaderValue(server) + "\r\n",
		ContentTypeFor(path),
	}
	for _, seg := range segs {
		if err := h.append(seg); err != nil {
			return nil, err
		}
	}
	return h.buf, nil
}

// WriteResponse writes header and body and flushes. It returns the number
// of bytes handed to the underlying writer.
func WriteResponse(bw *bufio.Writer, header, body []byte) (int, error) {
	n, err := bw.Write(header)
	if err != nil {
		return n, err
	}
	if len(body) > 0 {
		m, err := bw.Write(body)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

func sanitizeHeaderValue(v string) string {
	if v == "" {
		return v
	}
	// Remove CR/LF and other control chars except HTAB
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
