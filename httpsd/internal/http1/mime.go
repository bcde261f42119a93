package http1

import (
	"sort"
	"strings"
)

const defaultMIMEType = "application/octet-stream"

type mimeEntry struct {
	ext string
	typ string
}

// mimeTypes must stay sorted by ext; lookups binary-search it.
var mimeTypes = []mimeEntry{
	{"css", "text/css"},
	{"gif", "image/gif"},
	{"htm", "text/html"},
	{"html", "text/html"},
	{"ico", "image/x-icon"},
	{"jpeg", "image/jpeg"},
	{"jpg", "image/jpeg"},
	{"js", "text/javascript"},
	{"json", "application/json"},
	{"mp3", "audio/mpeg"},
	{"mp4", "video/mp4"},
	{"pdf", "application/pdf"},
	{"png", "image/png"},
	{"svg", "image/svg+xml"},
	{"ttf", "font/ttf"},
	{"txt", "text/plain"},
	{"wasm", "application/wasm"},
	{"webp", "image/webp"},
	{"woff", "font/woff"},
	{"woff2", "font/woff2"},
	{"xml", "application/xml"},
}

// MIMEType returns the media type for the extension of the last element
// of path, or application/octet-stream.
func MIMEType(path string) string {
	ext, ok := extension(path)
	if !ok {
		return defaultMIMEType
	}
	i := sort.Search(len(mimeTypes), func(i int) bool { return mimeTypes[i].ext >= ext })
	if i < len(mimeTypes) && mimeTypes[i].ext == ext {
		return mimeTypes[i].typ
	}
	return defaultMIMEType
}

// ContentTypeFor returns the Content-Type header line for path followed by
// the blank line that ends the header block.
func ContentTypeFor(path string) string {
	return "Content-Type: " + MIMEType(path) + "\r\n\r\n"
}

func extension(path string) (string, bool) {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return "", false
	}
	return strings.ToLower(path[i+1:]), true
}
