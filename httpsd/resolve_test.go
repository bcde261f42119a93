package httpsd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dqx0.com/go/cyllenian/internal/fileio"
	"dqx0.com/go/cyllenian/internal/obs"
)

type site struct {
	root     string
	fallback string
}

// newSite lays out a website root with a site-specific 404 page and a
// fallback directory with all three error pages.
func newSite(t *testing.T) site {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval tempdir: %v", err)
	}
	s := site{root: filepath.Join(base, "website"), fallback: filepath.Join(base, "etc")}
	files := map[string]string{
		"website/index.html":   "<h1>home</h1>",
		"website/style.css":    "body{}",
		"website/my page.html": "spaced",
		"website/img/logo.png": "\x89PNG",
		"website/404.html":     "site 404",
		"etc/403.html":         "system 403",
		"etc/404.html":         "system 404",
		"etc/405.html":         "system 405",
		"secret.txt":           "outside",
	}
	for name, body := range files {
		p := filepath.Join(base, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(s.root, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	return s
}

func (s site) resolver(log obs.Logger) *Resolver {
	return NewResolver(s.root, s.fallback, fileio.OS{}, log)
}

func resolve(t *testing.T, r *Resolver, raw string) Target {
	t.Helper()
	tgt, err := r.Resolve([]byte(raw))
	if err != nil {
		t.Fatalf("Resolve(%q) error: %v", raw, err)
	}
	return tgt
}

func TestResolve_Success(t *testing.T) {
	s := newSite(t)
	r := s.resolver(nil)
	cases := map[string]string{
		"GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n": "index.html",
		"HEAD /style.css HTTP/1.1\r\n\r\n":            "style.css",
		"GET //img///logo.png HTTP/1.1\r\n\r\n":       "img/logo.png",
		"GET /index.html?v=2 HTTP/1.1\r\n\r\n":        "index.html",
		"GET /my%20page.html HTTP/1.1\r\n\r\n":        "my page.html",
		"GET /index.html":                             "index.html",
	}
	for raw, rel := range cases {
		tgt := resolve(t, r, raw)
		if tgt.Status != 200 || tgt.Path != filepath.Join(s.root, filepath.FromSlash(rel)) || tgt.Inline {
			t.Fatalf("Resolve(%q)=%+v", raw, tgt)
		}
	}
}

func TestResolve_MethodNotAllowed(t *testing.T) {
	s := newSite(t)
	r := s.resolver(nil)
	for _, raw := range []string{
		"POST /index.html HTTP/1.1\r\n\r\n",
		"PUT /../../etc/passwd HTTP/1.1\r\n\r\n",
		"DELETE /missing/ HTTP/1.1\r\n\r\n",
		"OPTIONS * HTTP/1.1\r\n\r\n",
		"get /index.html HTTP/1.1\r\n\r\n",
		"GETX /index.html HTTP/1.1\r\n\r\n",
		"\r\n",
	} {
		tgt := resolve(t, r, raw)
		if tgt.Status != 405 || tgt.Path != filepath.Join(s.fallback, "405.html") {
			t.Fatalf("Resolve(%q)=%+v", raw, tgt)
		}
	}
}

func TestResolve_Traversal(t *testing.T) {
	s := newSite(t)
	r := s.resolver(nil)
	for _, p := range []string{
		"/../../etc/passwd",
		"/../secret.txt",
		"/img/../../secret.txt",
		"/%2e%2e%2fsecret.txt",
		"/%2e%2e/secret.txt",
		"/..%2fsecret.txt",
		"/%2e%2e%5csecret.txt",
		`/%2e%2e\secret.txt`,
		"/..%5csecret.txt",
		"/%252e%252e%255csecret.txt",
		"/..%255csecret.txt",
		`/..\secret.txt`,
		"/%2E%2E%2Fsecret.txt",
		"/%252e%252e%252fsecret.txt",
		"/..",
		"/../",
		"/index.html?back=../../",
	} {
		raw := "GET " + p + " HTTP/1.1\r\n\r\n"
		tgt := resolve(t, r, raw)
		if tgt.Status != 403 || tgt.Path != filepath.Join(s.fallback, "403.html") {
			t.Fatalf("Resolve(%q)=%+v", raw, tgt)
		}
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	s := newSite(t)
	if err := os.Symlink(filepath.Join(filepath.Dir(s.root), "secret.txt"), filepath.Join(s.root, "leak.txt")); err != nil {
		t.Skipf("symlink: %v", err)
	}
	tgt := resolve(t, s.resolver(nil), "GET /leak.txt HTTP/1.1\r\n\r\n")
	if tgt.Status != 403 {
		t.Fatalf("symlink escape resolved to %+v", tgt)
	}
}

func TestResolve_TrailingSlash(t *testing.T) {
	s := newSite(t)
	r := s.resolver(nil)
	for _, p := range []string{"/style.css/", "/", "/img/", "//", "/css/", "/nothing/"} {
		raw := "GET " + p + " HTTP/1.1\r\n\r\n"
		tgt := resolve(t, r, raw)
		if tgt.Status != 404 || tgt.Path != filepath.Join(s.root, "404.html") {
			t.Fatalf("Resolve(%q)=%+v", raw, tgt)
		}
	}
}

func TestResolve_NotFound(t *testing.T) {
	s := newSite(t)
	r := s.resolver(nil)
	for _, raw := range []string{
		"GET /missing.png HTTP/1.1\r\n\r\n",
		"GET /css HTTP/1.1\r\n\r\n",
		"GET /%zz HTTP/1.1\r\n\r\n",
		"GET /index.html SPDY/3\r\n\r\n",
		"GET /a\x00b.html HTTP/1.1\r\n\r\n",
	} {
		tgt := resolve(t, r, raw)
		if tgt.Status != 404 || tgt.Path != filepath.Join(s.root, "404.html") {
			t.Fatalf("Resolve(%q)=%+v", raw, tgt)
		}
	}
}

func TestResolve_ErrorPageFallbackExhausted(t *testing.T) {
	s := newSite(t)
	var log obs.MemLogger
	r := NewResolver(s.root, "", fileio.OS{}, &log)

	tgt := resolve(t, r, "POST / HTTP/1.1\r\n\r\n")
	if tgt.Status != 405 || !tgt.Inline || tgt.Path != "405.html" {
		t.Fatalf("target=%+v", tgt)
	}
	warned := false
	for _, e := range log.Entries() {
		if e.Level == obs.Warn && strings.Contains(e.Msg, "405.html") {
			warned = true
		}
	}
	if !warned {
		t.Fatal("fallback exhaustion was not logged")
	}

	// The site 404 page still wins when present.
	if tgt := resolve(t, r, "GET /nope HTTP/1.1\r\n\r\n"); tgt.Inline || tgt.Path != filepath.Join(s.root, "404.html") {
		t.Fatalf("404 target=%+v", tgt)
	}
}

func TestResolve_SitePageOverridesFallback(t *testing.T) {
	s := newSite(t)
	if err := os.WriteFile(filepath.Join(s.root, "403.html"), []byte("site 403"), 0o644); err != nil {
		t.Fatal(err)
	}
	tgt := resolve(t, s.resolver(nil), "GET /../x HTTP/1.1\r\n\r\n")
	if tgt.Path != filepath.Join(s.root, "403.html") {
		t.Fatalf("target=%+v", tgt)
	}
}

func TestResolve_Errors(t *testing.T) {
	s := newSite(t)
	r := s.resolver(nil)
	if _, err := r.Resolve(nil); !errors.Is(err, ErrEmptyRequest) {
		t.Fatalf("empty err=%v", err)
	}
	big := make([]byte, MaxRequestBytes+1)
	copy(big, "GET /index.html HTTP/1.1\r\n")
	if _, err := r.Resolve(big); !errors.Is(err, ErrRequestTooLarge) {
		t.Fatalf("large err=%v", err)
	}
}
