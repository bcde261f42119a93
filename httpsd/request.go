package httpsd

import "dqx0.com/go/cyllenian/httpsd/internal/http1"

// Request is the parsed view of one raw request buffer. Only the request
// line is interpreted; Host is kept for the access log.
type Request struct {
	Method string
	Target string
	Proto  string
	// Line is the request line without CRLF, as logged.
	Line string
	Host string
	Raw  []byte
}

// ParseRequest never fails: fields the buffer does not carry stay empty.
func ParseRequest(raw []byte) *Request {
	rl, _ := http1.ParseRequestLine(raw)
	return &Request{
		Method: rl.Method,
		Target: rl.Target,
		Proto:  rl.Proto,
		Line:   rl.Raw,
		Host:   http1.Host(raw),
		Raw:    raw,
	}
}

// IsHead reports whether the response body must be omitted.
func (r *Request) IsHead() bool {
	return http1.IsHead(r.Raw)
}
