package obs

import (
	"sort"
	"strings"
	"sync"
)

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter is a very small interface for emitting counters/histograms.
// Implementations may no-op or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// CountingMeter aggregates measurements in memory. Counters are summed;
// histograms keep a count and a sum under "<name>.count" and "<name>.sum".
type CountingMeter struct {
	mu     sync.Mutex
	values map[string]float64
}

func (m *CountingMeter) Counter(name string, value float64, labels ...Label) {
	m.add(Key(name, labels...), value)
}

func (m *CountingMeter) Histogram(name string, value float64, labels ...Label) {
	m.add(Key(name+".count", labels...), 1)
	m.add(Key(name+".sum", labels...), value)
}

// Value returns the aggregate stored for name and labels.
func (m *CountingMeter) Value(name string, labels ...Label) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[Key(name, labels...)]
}

// Snapshot returns a copy of every aggregate keyed as produced by Key.
func (m *CountingMeter) Snapshot() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *CountingMeter) add(key string, v float64) {
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[string]float64)
	}
	m.values[key] += v
	m.mu.Unlock()
}

// Key renders name and labels as name{k1=v1,k2=v2} with labels sorted by key.
func Key(name string, labels ...Label) string {
	if len(labels) == 0 {
		return name
	}
	ls := make([]Label, len(labels))
	copy(ls, labels)
	sort.Slice(ls, func(i, j int) bool { return ls[i].Key < ls[j].Key })
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.Key)
		b.WriteByte('=')
		b.WriteString(l.Value)
	}
	b.WriteByte('}')
	return b.String()
}
