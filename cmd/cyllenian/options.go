package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"dqx0.com/go/cyllenian/httpsd"
	"dqx0.com/go/cyllenian/internal/fileio"
)

const programName = "cyllenian"

var errHelp = errors.New("help requested")

type options struct {
	dataDir  string
	root     string
	fallback string
	cert     string
	key      string
	port     int
	logFile  bool
	reader   string
	verbose  bool
}

func (o options) addr() string { return ":" + strconv.Itoa(o.port) }

func (o options) logDir() string { return filepath.Join(o.dataDir, "logs") }

const usage = `Usage: cyllenian [options]
Options:
  -c               Specify path to certificate file
  -h               Show this help message
  -k               Specify path to private key file
  -l               Save logs to file
  -p               Specify port to listen on
  -root            Website directory (default <data>/website)
  -fallback        System-wide error page directory
  -reader          File reader: os, iouring or uring
  -v               Log debug detail
`

// dataDir returns $XDG_DATA_HOME/cyllenian, or ~/.local/share/cyllenian
// when XDG_DATA_HOME is unset.
func dataDir(getenv func(string) string) (string, error) {
	if x := getenv("XDG_DATA_HOME"); x != "" {
		return filepath.Join(x, programName), nil
	}
	home := getenv("HOME")
	if home == "" {
		return "", errors.New("neither XDG_DATA_HOME nor HOME is set")
	}
	return filepath.Join(home, ".local", "share", programName), nil
}

// parseOptions reads flags from args (without the program name). It
// returns errHelp after writing the usage text when -h is given.
func parseOptions(args []string, getenv func(string) string, out io.Writer) (options, error) {
	dir, err := dataDir(getenv)
	if err != nil {
		return options{}, err
	}
	o := options{dataDir: dir}

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	fs.StringVar(&o.cert, "c", filepath.Join(dir, "cert"), "")
	fs.StringVar(&o.key, "k", filepath.Join(dir, "key"), "")
	fs.BoolVar(&o.logFile, "l", false, "")
	fs.IntVar(&o.port, "p", 8080, "")
	fs.StringVar(&o.root, "root", filepath.Join(dir, "website"), "")
	fs.StringVar(&o.fallback, "fallback", httpsd.DefaultFallbackDir, "")
	fs.StringVar(&o.reader, "reader", fileio.KindOS, "")
	fs.BoolVar(&o.verbose, "v", false, "")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return o, errHelp
		}
		return o, fmt.Errorf("%w; run with -h for options", err)
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected argument %q; run with -h for options", fs.Arg(0))
	}
	if o.port <= 1024 || o.port >= 49151 {
		return o, errors.New("port must be between 1024 and 49151")
	}
	switch o.reader {
	case fileio.KindOS, fileio.KindIOURing, fileio.KindRing:
	default:
		return o, fmt.Errorf("unknown reader %q", o.reader)
	}
	return o, nil
}

// checkWebsite fails when the website directory is missing.
func checkWebsite(root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("website directory not found: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("website directory not found: %s is not a directory", root)
	}
	return nil
}
