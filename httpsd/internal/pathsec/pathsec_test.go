package pathsec

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"a//b///c/":        "a/b/c",
		"/a/":              "/a",
		"/index.html":      "/index.html",
		"//css//site.css":  "/css/site.css",
		"/":                "",
		"":                 "",
		"/a/b//":           "/a/b",
		"no/slash/at/end":  "no/slash/at/end",
		"/img///logo.png/": "/img/logo.png",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "/", "//", "///a", "a//b///c/", "/a/", "/x/./y//", "..//..//", `\\a\\`, "/a/b/c",
	}
	for _, p := range inputs {
		once := Normalize(p)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", p, once, twice)
		}
	}
}

func TestContainsTraversal_KnownPatterns(t *testing.T) {
	for _, p := range []string{
		"/../../etc/passwd",
		"/%2e%2e%2fetc/passwd",
		"/%2e%2e/etc/passwd",
		"/..%2fetc/passwd",
		"/%2e%2e%5cwindows",
		`/%2e%2e\windows`,
		"/..%5cwindows",
		"/%252e%252e%255cwindows",
		"/..%255cwindows",
		`/..\windows`,
	} {
		if !ContainsTraversal(p) {
			t.Fatalf("ContainsTraversal(%q)=false", p)
		}
	}
}

func TestContainsTraversal_CaseAndLayers(t *testing.T) {
	for _, p := range []string{
		"/%2E%2E%2Fetc/passwd",
		"/%2E%2e/etc",
		"/%252E%252E%252Fetc",
		"/%25252e%25252e%25252fetc",
		"/a/..",
		"..",
		"/%2e%2e",
	} {
		if !ContainsTraversal(p) {
			t.Fatalf("ContainsTraversal(%q)=false", p)
		}
	}
}

func TestContainsTraversal_Clean(t *testing.T) {
	for _, p := range []string{
		"/index.html",
		"/css/site.css",
		"/a..b/c",
		"/file..txt",
		"/my%20page.html",
		"/%zz",
		"",
	} {
		if ContainsTraversal(p) {
			t.Fatalf("ContainsTraversal(%q)=true", p)
		}
	}
}

func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval tempdir: %v", err)
	}
	return dir
}

func TestWithin(t *testing.T) {
	root := canonicalTempDir(t)
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		path string
		ok   bool
	}{
		{"/index.html", true},
		{"/", true},
		{"", true},
		{"/sub/missing.png", true},
		{"/../etc/passwd", false},
		{"/a/../../etc/passwd", false},
		{"..", false},
		{"/a/../index.html", true},
	}
	for _, c := range cases {
		full, ok := Within(root, c.path)
		if ok != c.ok {
			t.Fatalf("Within(%q)=(%q,%v), want ok=%v", c.path, full, ok, c.ok)
		}
	}
	if full, _ := Within(root, "/index.html"); full != filepath.Join(root, "index.html") {
		t.Fatalf("full=%q", full)
	}
}

func TestWithin_SymlinkEscape(t *testing.T) {
	root := canonicalTempDir(t)
	outside := canonicalTempDir(t)
	secret := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(secret, []byte("s"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(secret, filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlink: %v", err)
	}
	if _, ok := Within(root, "/link.txt"); ok {
		t.Fatal("symlink escaping the root was accepted")
	}

	inside := filepath.Join(root, "real.txt")
	if err := os.WriteFile(inside, []byte("r"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(inside, filepath.Join(root, "alias.txt")); err != nil {
		t.Fatal(err)
	}
	if _, ok := Within(root, "/alias.txt"); !ok {
		t.Fatal("symlink inside the root was rejected")
	}
}

func TestWithin_SiblingPrefix(t *testing.T) {
	parent := canonicalTempDir(t)
	root := filepath.Join(parent, "www")
	if _, ok := Within(root, "/../www-private/key"); ok {
		t.Fatal("sibling sharing the root's name prefix was accepted")
	}
}
