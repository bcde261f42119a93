package httpsd

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"dqx0.com/go/cyllenian/internal/obs"
)

// Server accepts TCP connections and serves each one in its own goroutine.
type Server struct {
	cfg      Config
	resolver *Resolver
	log      obs.Logger
	meter    obs.Meter

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	wg     sync.WaitGroup
}

// NewServer validates cfg, canonicalizes the website root and returns a
// Server ready to accept connections.
func NewServer(cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	if cfg.TLSConfig == nil {
		return nil, ErrNoTLSConfig
	}
	root, err := canonicalRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	cfg.Root = root
	return &Server{
		cfg:      cfg,
		resolver: NewResolver(cfg.Root, cfg.FallbackDir, cfg.Files, cfg.Logger),
		log:      cfg.Logger,
		meter:    cfg.Meter,
	}, nil
}

// Root returns the canonical website root.
func (s *Server) Root() string { return s.cfg.Root }

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until l fails or Shutdown is called, in
// which case it returns ErrServerClosed.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return ErrServerClosed
	}
	s.ln = l
	s.mu.Unlock()
	defer l.Close()

	s.log.Logf(obs.Info, "listening on %s, serving %s", l.Addr(), s.cfg.Root)
	ctx := context.Background()
	var tempDelay time.Duration
	for {
		rw, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if tempDelay > time.Second {
					tempDelay = time.Second
				}
				s.log.Logf(obs.Error, "accept: %v; retrying in %v", err, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			s.log.Logf(obs.Error, "accept: %v", err)
			return err
		}
		tempDelay = 0

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			rw.Close()
			return ErrServerClosed
		}
		s.wg.Add(1)
		s.mu.Unlock()

		s.meter.Counter("cyllenian.conn.accepted", 1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, rw)
		}()
	}
}

// Shutdown stops accepting and waits for in-flight connections to finish
// or for ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
