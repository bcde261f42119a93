// Command cyllenian serves a static website over HTTPS.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"dqx0.com/go/cyllenian/httpsd"
	"dqx0.com/go/cyllenian/internal/fileio"
	"dqx0.com/go/cyllenian/internal/obs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Entries logged before the log sinks exist are replayed into them.
	var early obs.MemLogger

	opts, err := parseOptions(args, os.Getenv, os.Stdout)
	if errors.Is(err, errHelp) {
		return 0
	}
	stderr := obs.StdLogger{L: log.New(os.Stderr, "", log.LstdFlags), Min: obs.Info, Pref: programName + " "}
	if err != nil {
		stderr.Logf(obs.Error, "%v", err)
		return 1
	}
	if opts.verbose {
		stderr.Min = obs.Debug
	}

	logger := obs.MultiLogger{stderr}
	if opts.logFile {
		df := &obs.DailyFile{Dir: opts.logDir(), Prefix: programName}
		defer df.Close()
		logger = append(logger, obs.StdLogger{L: log.New(df, "", log.LstdFlags), Min: stderr.Min})
		early.Logf(obs.Info, "logging to %s", df.Path())
	}

	if err := checkWebsite(opts.root); err != nil {
		early.Replay(logger)
		logger.Logf(obs.Fatal, "%v", err)
		return 1
	}

	files, closer, err := fileio.Open(opts.reader)
	if err != nil {
		early.Logf(obs.Warn, "reader %q unavailable, using os: %v", opts.reader, err)
		files, closer, _ = fileio.Open(fileio.KindOS)
	}
	defer closer.Close()
	early.Replay(logger)

	tlsCfg, err := loadTLS(opts, logger)
	if err != nil {
		logger.Logf(obs.Fatal, "%v", err)
		return 1
	}

	meter := &obs.CountingMeter{}
	srv, err := httpsd.NewServer(httpsd.Config{
		Addr:             opts.addr(),
		Root:             opts.root,
		FallbackDir:      opts.fallback,
		TLSConfig:        tlsCfg,
		HandshakeTimeout: httpsd.DefaultHandshakeTimeout,
		ReadTimeout:      httpsd.DefaultReadTimeout,
		WriteTimeout:     httpsd.DefaultWriteTimeout,
		Files:            files,
		Logger:           logger,
		Meter:            meter,
	})
	if err != nil {
		logger.Logf(obs.Fatal, "%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		logger.Logf(obs.Fatal, "serve: %v", err)
		return 1
	case <-ctx.Done():
	}

	fmt.Fprint(os.Stdout, "\nInterrupt given, closing socket..\n")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	code := 0
	if err := srv.Shutdown(sctx); err != nil {
		logger.Logf(obs.Error, "shutdown: %v", err)
		code = 1
	}
	if err := <-errc; !errors.Is(err, httpsd.ErrServerClosed) {
		logger.Logf(obs.Error, "serve: %v", err)
	}
	reportMeter(logger, meter)
	return code
}

func loadTLS(opts options, logger obs.Logger) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(opts.cert, opts.key)
	if err != nil {
		return nil, fmt.Errorf("load certificate %s, key %s: %w", filepath.Base(opts.cert), filepath.Base(opts.key), err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if opts.verbose {
		cfg.GetConfigForClient = func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
			id, _ := httpsd.ConnIDFrom(hello.Context())
			logger.Logf(obs.Debug, "conn=%s sni=%q", id, hello.ServerName)
			return nil, nil
		}
	}
	return cfg, nil
}

func reportMeter(logger obs.Logger, m *obs.CountingMeter) {
	snap := m.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasSuffix(k, ".bytes.sum") {
			logger.Logf(obs.Info, "%s %s", k, humanize.Bytes(uint64(snap[k])))
			continue
		}
		logger.Logf(obs.Info, "%s %g", k, snap[k])
	}
}
