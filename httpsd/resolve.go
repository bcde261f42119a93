package httpsd

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"dqx0.com/go/cyllenian/httpsd/internal/http1"
	"dqx0.com/go/cyllenian/httpsd/internal/pathsec"
	"dqx0.com/go/cyllenian/internal/fileio"
	"dqx0.com/go/cyllenian/internal/obs"
)

// Resolver maps a raw request to a Target. It holds no per-request state
// and is safe for concurrent use.
type Resolver struct {
	root     string
	fallback string
	files    fileio.Files
	log      obs.Logger
}

// NewResolver returns a Resolver serving files under root, which must be
// absolute and symlink-free. fallbackDir may be empty.
func NewResolver(root, fallbackDir string, files fileio.Files, log obs.Logger) *Resolver {
	if files == nil {
		files = fileio.OS{}
	}
	if log == nil {
		log = obs.NopLogger{}
	}
	return &Resolver{root: filepath.Clean(root), fallback: fallbackDir, files: files, log: log}
}

// Resolve applies, in order: the method check (405), the traversal and
// confinement checks (403), the directory and existence checks (404).
// A request passing all of them resolves to 200 and its file.
func (r *Resolver) Resolve(req []byte) (Target, error) {
	if len(req) == 0 {
		return Target{}, ErrEmptyRequest
	}
	if len(req) > MaxRequestBytes {
		return Target{}, ErrRequestTooLarge
	}
	if !http1.AcceptedMethod(req) {
		return r.errorPage(405), nil
	}
	rl, err := http1.ParseRequestLine(req)
	if err != nil {
		r.log.Logf(obs.Debug, "malformed request line %q", rl.Raw)
		return r.errorPage(404), nil
	}
	// The raw target, query included, is checked before anything is cut.
	if pathsec.ContainsTraversal(rl.Target) {
		return r.errorPage(403), nil
	}
	target := stripQuery(rl.Target)
	norm := pathsec.Normalize(target)
	if pathsec.ContainsTraversal(norm) {
		return r.errorPage(403), nil
	}
	decoded, err := url.PathUnescape(norm)
	if err != nil {
		return r.errorPage(404), nil
	}
	full, ok := pathsec.Within(r.root, decoded)
	if !ok {
		r.log.Logf(obs.Warn, "request %q escapes website root", rl.Target)
		return r.errorPage(403), nil
	}

	// Directory requests are not served.
	if target == "" || strings.HasSuffix(target, "/") {
		return r.errorPage(404), nil
	}
	if !r.files.Exists(full) {
		return r.errorPage(404), nil
	}
	return Target{Status: 200, Path: full}, nil
}

// errorPage looks for <code>.html under the website root, then under the
// fallback directory. If neither exists it returns an inline target.
func (r *Resolver) errorPage(code int) Target {
	name := strconv.Itoa(code) + ".html"
	for _, dir := range [...]string{r.root, r.fallback} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, name)
		if r.files.Exists(p) {
			return Target{Status: code, Path: p}
		}
	}
	r.log.Logf(obs.Warn, "error page %s found in neither %s nor %q; serving built-in page", name, r.root, r.fallback)
	return Target{Status: code, Path: name, Inline: true}
}

func stripQuery(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		return target[:i]
	}
	return target
}
