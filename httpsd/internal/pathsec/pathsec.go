// Package pathsec keeps request paths inside the website root.
//
// Two independent checks are provided. ContainsTraversal is a blacklist of
// known escape sequences, matched case-insensitively on every
// percent-decoding layer of the raw request path. Within is the canonical
// check: it joins the path under the root, cleans it, resolves symlinks and
// requires the result to be the root or one of its descendants.
package pathsec

import (
	"net/url"
	"path/filepath"
	"strings"
)

// traversalPatterns are matched against lower-cased input.
var traversalPatterns = []string{
	"../",
	"%2e%2e%2f",
	"%2e%2e/",
	"..%2f",
	"%2e%2e%5c",
	`%2e%2e\`,
	"..%5c",
	"%252e%252e%255c",
	"..%255c",
	`..\`,
}

// maxDecodeLayers bounds how many nested percent-encodings are peeled.
const maxDecodeLayers = 3

// Normalize collapses runs of '/' into one and strips a single trailing
// '/'. It makes one left-to-right pass.
func Normalize(p string) string {
	if p == "" {
		return p
	}
	b := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '/' && i+1 < len(p) && p[i+1] == '/' {
			continue
		}
		b = append(b, p[i])
	}
	if n := len(b); n > 0 && b[n-1] == '/' {
		b = b[:n-1]
	}
	return string(b)
}

// ContainsTraversal reports whether p holds a known directory escape
// sequence, in plain, percent-encoded or nested percent-encoded form.
func ContainsTraversal(p string) bool {
	s := strings.ToLower(p)
	for layer := 0; ; layer++ {
		if matchTraversal(s) {
			return true
		}
		if layer == maxDecodeLayers {
			return false
		}
		d, err := url.PathUnescape(s)
		if err != nil || d == s {
			return false
		}
		s = strings.ToLower(d)
	}
}

func matchTraversal(s string) bool {
	for _, pat := range traversalPatterns {
		if strings.Contains(s, pat) {
			return true
		}
	}
	return s == ".." || strings.HasSuffix(s, "/..") || strings.HasSuffix(s, `\..`)
}

// Within joins p under root and reports whether the cleaned result stays
// inside root. If the joined path exists, its symlinks are resolved and
// the real path must stay inside root too. root must already be absolute,
// clean and free of symlinks. The returned path is the joined, cleaned
// path (not the symlink-resolved one).
func Within(root, p string) (string, bool) {
	root = filepath.Clean(root)
	full := filepath.Join(root, filepath.FromSlash(p))
	if !descends(root, full) {
		return full, false
	}
	if resolved, err := filepath.EvalSymlinks(full); err == nil && !descends(root, resolved) {
		return full, false
	}
	return full, true
}

func descends(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
