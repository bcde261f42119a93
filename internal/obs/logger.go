package obs

import (
	"fmt"
	"log"
	"sync"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is a minimal logging interface for observability.
// Implementations must be safe for concurrent use.
type Logger interface {
	Logf(level Level, format string, args ...interface{})
}

// NopLogger discards all logs.
type NopLogger struct{}

func (NopLogger) Logf(level Level, format string, args ...interface{}) {}

// StdLogger adapts the standard library logger.
type StdLogger struct {
	L    *log.Logger
	Min  Level
	Pref string // optional prefix per log line
}

func (s StdLogger) Logf(level Level, format string, args ...interface{}) {
	if s.L == nil {
		return
	}
	if level < s.Min {
		return
	}
	if s.Pref != "" {
		s.L.Printf("%s[%s] "+format, append([]interface{}{s.Pref, level.String()}, args...)...)
	} else {
		s.L.Printf("[%s] "+format, append([]interface{}{level.String()}, args...)...)
	}
}

// MultiLogger fans every entry out to each of its loggers in order.
type MultiLogger []Logger

func (m MultiLogger) Logf(level Level, format string, args ...interface{}) {
	for _, l := range m {
		if l != nil {
			l.Logf(level, format, args...)
		}
	}
}

// Access writes one access-log line: host "request line" status size.
// An empty host is logged as "-".
func Access(l Logger, host, requestLine string, status, size int) {
	if l == nil {
		return
	}
	if host == "" {
		host = "-"
	}
	l.Logf(Info, "%s %q %d %d", host, requestLine, status, size)
}

// Entry is one captured log call.
type Entry struct {
	Level Level
	Msg   string
}

// MemLogger keeps entries in memory. Handy in tests and for startup
// diagnostics collected before the real sinks are configured.
type MemLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *MemLogger) Logf(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	m.mu.Lock()
	m.entries = append(m.entries, Entry{Level: level, Msg: msg})
	m.mu.Unlock()
}

// Entries returns a copy of the captured entries.
func (m *MemLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Replay forwards captured entries to l.
func (m *MemLogger) Replay(l Logger) {
	for _, e := range m.Entries() {
		l.Logf(e.Level, "%s", e.Msg)
	}
}
