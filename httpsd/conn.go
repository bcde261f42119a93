package httpsd

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"dqx0.com/go/cyllenian/httpsd/internal/http1"
	"dqx0.com/go/cyllenian/internal/obs"
)

type connState int

const (
	stateHandshaking connState = iota
	stateReading
	stateResolving
	stateWriting
	stateShuttingDown
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateHandshaking:
		return "handshaking"
	case stateReading:
		return "reading"
	case stateResolving:
		return "resolving"
	case stateWriting:
		return "writing"
	case stateShuttingDown:
		return "shutting-down"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// conn is the state of one client connection. It is owned by a single
// goroutine and never shared.
type conn struct {
	srv   *Server
	raw   net.Conn
	tc    *tls.Conn
	id    string
	state connState
	start time.Time
}

func (s *Server) serveConn(ctx context.Context, rw net.Conn) {
	c := &conn{srv: s, raw: rw, id: genID(), start: time.Now()}
	defer c.close()
	c.serve(WithConnID(ctx, c.id))
}

// serve runs handshake, read, resolve, write and shutdown in order. Any
// failure returns straight away; close runs afterwards on every path.
func (c *conn) serve(ctx context.Context) {
	if err := c.handshake(ctx); err != nil {
		c.fail(err)
		return
	}

	c.setState(stateReading)
	raw, err := c.readRequest()
	if err != nil {
		c.fail(err)
		return
	}

	c.setState(stateResolving)
	t, err := c.srv.resolver.Resolve(raw)
	if err != nil {
		c.fail(err)
		return
	}

	c.setState(stateWriting)
	req := ParseRequest(raw)
	n, err := c.writeResponse(req, t)
	obs.Access(c.srv.log, req.Host, req.Line, t.Status, n)
	c.srv.meter.Counter("cyllenian.response", 1, obs.Label{Key: "status", Value: strconv.Itoa(t.Status)})
	c.srv.meter.Histogram("cyllenian.response.bytes", float64(n))
	if err != nil {
		c.fail(err)
		return
	}

	c.setState(stateShuttingDown)
	if err := c.tc.CloseWrite(); err != nil {
		c.logf(obs.Warn, "close-notify: %v", err)
	}
}

func (c *conn) handshake(ctx context.Context) error {
	c.setState(stateHandshaking)
	c.tc = tls.Server(c.raw, c.srv.cfg.TLSConfig)
	if d := c.srv.cfg.HandshakeTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := c.tc.HandshakeContext(ctx); err != nil {
		return fmt.Errorf("tls handshake: %w", err)
	}
	return nil
}

// readRequest reads until the request line is complete, the buffer is
// full or the peer stops sending.
func (c *conn) readRequest() ([]byte, error) {
	if d := c.srv.cfg.ReadTimeout; d > 0 {
		_ = c.tc.SetReadDeadline(time.Now().Add(d))
	}
	buf := make([]byte, MaxRequestBytes-1)
	n := 0
	for n < len(buf) && bytes.IndexByte(buf[:n], '\n') < 0 {
		m, err := c.tc.Read(buf[n:])
		n += m
		if err != nil {
			if n > 0 {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read request: %w", ErrEmptyRequest)
			}
			return nil, fmt.Errorf("read request: %w", err)
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("read request: %w", ErrEmptyRequest)
	}
	return buf[:n], nil
}

// writeResponse loads the body, builds the header and writes both. The
// body is loaded first so that a read failure leaves nothing on the wire.
// HEAD responses carry the header only.
func (c *conn) writeResponse(req *Request, t Target) (int, error) {
	var body []byte
	switch {
	case req.IsHead():
	case t.Inline:
		body = inlineBody(t.Status)
	default:
		b, err := c.srv.cfg.Files.ReadFile(t.Path)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", t.Path, err)
		}
		body = b
	}
	header, err := http1.BuildHeader(t.Status, c.srv.cfg.ServerName, t.Path)
	if err != nil {
		return 0, fmt.Errorf("build header: %w", err)
	}
	if d := c.srv.cfg.WriteTimeout; d > 0 {
		_ = c.tc.SetWriteDeadline(time.Now().Add(d))
	}
	n, err := http1.WriteResponse(bufio.NewWriter(c.tc), header, body)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (c *conn) fail(err error) {
	c.logf(obs.Error, "%s: %v", c.state, err)
	c.srv.meter.Counter("cyllenian.conn.failed", 1, obs.Label{Key: "stage", Value: c.state.String()})
}

// close releases the TLS session and socket. It runs exactly once, from
// serveConn's defer.
func (c *conn) close() {
	if c.state == stateClosed {
		return
	}
	var err error
	if c.tc != nil {
		err = c.tc.Close()
	} else {
		err = c.raw.Close()
	}
	if err != nil && !errors.Is(err, net.ErrClosed) {
		c.logf(obs.Debug, "close: %v", err)
	}
	c.setState(stateClosed)
	c.srv.meter.Histogram("cyllenian.conn.duration_ms", float64(time.Since(c.start).Milliseconds()))
}

func (c *conn) setState(s connState) {
	c.state = s
	c.logf(obs.Debug, "state=%s", s)
}

func (c *conn) logf(level obs.Level, format string, args ...interface{}) {
	c.srv.log.Logf(level, "conn=%s remote=%s "+format, append([]interface{}{c.id, c.raw.RemoteAddr()}, args...)...)
}
