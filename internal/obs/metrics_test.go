package obs

import "testing"

func TestCountingMeter(t *testing.T) {
	var m CountingMeter
	m.Counter("conn.accepted", 1)
	m.Counter("conn.accepted", 1)
	m.Counter("response", 1, Label{"status", "200"})
	m.Histogram("response.bytes", 100)
	m.Histogram("response.bytes", 50)

	if v := m.Value("conn.accepted"); v != 2 {
		t.Fatalf("accepted=%v", v)
	}
	if v := m.Value("response", Label{"status", "200"}); v != 1 {
		t.Fatalf("response{200}=%v", v)
	}
	if v := m.Value("response.bytes.count"); v != 2 {
		t.Fatalf("count=%v", v)
	}
	if v := m.Value("response.bytes.sum"); v != 150 {
		t.Fatalf("sum=%v", v)
	}
	if n := len(m.Snapshot()); n != 4 {
		t.Fatalf("snapshot size=%d", n)
	}
}

func TestKey_SortsLabels(t *testing.T) {
	got := Key("x", Label{"b", "2"}, Label{"a", "1"})
	if got != "x{a=1,b=2}" {
		t.Fatalf("key=%q", got)
	}
	if Key("y") != "y" {
		t.Fatalf("bare key=%q", Key("y"))
	}
}
