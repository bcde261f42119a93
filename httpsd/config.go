package httpsd

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dqx0.com/go/cyllenian/internal/fileio"
	"dqx0.com/go/cyllenian/internal/obs"
)

const (
	DefaultAddr        = ":8080"
	DefaultServerName  = "cyllenian"
	DefaultFallbackDir = "/etc/cyllenian/website"

	DefaultHandshakeTimeout = 10 * time.Second
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 30 * time.Second

	// MaxRequestBytes caps the request buffer.
	MaxRequestBytes = 1 << 20
)

// Config is built once at startup and shared read-only by every
// connection. Zero timeouts disable the matching deadline.
type Config struct {
	Addr string
	// Root is the website root. Every 200 response is a file below it.
	Root string
	// FallbackDir holds the system-wide 403/404/405 pages. Empty disables
	// the fallback.
	FallbackDir string
	ServerName  string
	TLSConfig   *tls.Config

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration

	Files  fileio.Files
	Logger obs.Logger
	Meter  obs.Meter
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ServerName == "" {
		c.ServerName = DefaultServerName
	}
	if c.Files == nil {
		c.Files = fileio.OS{}
	}
	if c.Logger == nil {
		c.Logger = obs.NopLogger{}
	}
	if c.Meter == nil {
		c.Meter = obs.NopMeter{}
	}
	return c
}

// canonicalRoot returns root as an absolute, clean, symlink-free path.
func canonicalRoot(root string) (string, error) {
	if root == "" || !filepath.IsAbs(root) {
		return "", fmt.Errorf("%w: %q", ErrBadRoot, root)
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadRoot, err)
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadRoot, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrBadRoot, resolved)
	}
	return resolved, nil
}
