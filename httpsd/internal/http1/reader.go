package http1

import (
	"bytes"
	"errors"
	"strings"
)

var ErrMalformedRequestLine = errors.New("http1: malformed request line")

// RequestLine is the first line of a request split into its fields.
// Proto is empty for a bare "METHOD target" line.
type RequestLine struct {
	Method string
	Target string
	Proto  string
	Raw    string
}

// FirstLine returns the request line without its CRLF terminator.
func FirstLine(buf []byte) string {
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}
	return string(bytes.TrimSuffix(buf, []byte{'\r'}))
}

// ParseRequestLine splits the first line of buf into method, target and
// protocol. Only the method and target are required.
func ParseRequestLine(buf []byte) (RequestLine, error) {
	line := FirstLine(buf)
	rl := RequestLine{Raw: line}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return rl, ErrMalformedRequestLine
	}
	rl.Method, rl.Target = parts[0], parts[1]
	if len(parts) == 3 {
		rl.Proto = parts[2]
		if !strings.HasPrefix(rl.Proto, "HTTP/1.") && !strings.HasPrefix(rl.Proto, "HTTP/0.9") {
			return rl, ErrMalformedRequestLine
		}
	}
	return rl, nil
}

// AcceptedMethod reports whether the request line starts with one of the
// served methods, GET or HEAD, followed by a space.
func AcceptedMethod(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte("GET ")) || IsHead(buf)
}

// IsHead reports whether the request is a HEAD request.
func IsHead(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte("HEAD "))
}

// Host returns the Host header value of the request with any port removed,
// or "" when there is none. Only the header block is searched.
func Host(buf []byte) string {
	if i := bytes.Index(buf, []byte("\r\n\r\n")); i >= 0 {
		buf = buf[:i]
	}
	lines := strings.Split(string(buf), "\n")
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		i := strings.IndexByte(line, ':')
		if i <= 0 || !strings.EqualFold(strings.TrimSpace(line[:i]), "Host") {
			continue
		}
		return stripPort(strings.TrimSpace(line[i+1:]))
	}
	return ""
}

func stripPort(h string) string {
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i > 0 {
			return h[:i+1]
		}
		return h
	}
	if i := strings.IndexByte(h, ':'); i >= 0 {
		return h[:i]
	}
	return h
}
