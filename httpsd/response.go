package httpsd

import (
	"strconv"

	"dqx0.com/go/cyllenian/httpsd/internal/http1"
)

// Target is the outcome of resolving one request.
type Target struct {
	// Status is one of 200, 403, 404 or 405.
	Status int
	// Path is the file to serve. When Inline is set it is only the
	// error page name, kept so the Content-Type still resolves to HTML.
	Path string
	// Inline means no error page file was found and the built-in body
	// must be served.
	Inline bool
}

// inlineBody is served when neither the per-site nor the system-wide
// error page exists.
func inlineBody(status int) []byte {
	title := strconv.Itoa(status) + " " + http1.Reason(status)
	return []byte("<!DOCTYPE html>\n<html><head><title>" + title +
		"</title></head><body><h1>" + title + "</h1></body></html>\n")
}
