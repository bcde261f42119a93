package obs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile is an io.Writer that appends to <Dir>/<Prefix>-YYYY-MM-DD.log
// and switches to a new file when the local date changes.
// It is safe for concurrent use.
type DailyFile struct {
	Dir    string
	Prefix string

	now func() time.Time

	mu  sync.Mutex
	day string
	f   *os.File
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	day := d.clock().Format("2006-01-02")
	if d.f == nil || day != d.day {
		if err := d.rotate(day); err != nil {
			return 0, err
		}
	}
	return d.f.Write(p)
}

// Path returns the file a write made now would go to.
func (d *DailyFile) Path() string {
	return d.pathFor(d.clock().Format("2006-01-02"))
}

func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

func (d *DailyFile) rotate(day string) error {
	if d.Dir == "" {
		return errors.New("obs: daily log file has no directory")
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(d.pathFor(day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if d.f != nil {
		_ = d.f.Close()
	}
	d.f = f
	d.day = day
	return nil
}

func (d *DailyFile) pathFor(day string) string {
	name := day + ".log"
	if d.Prefix != "" {
		name = d.Prefix + "-" + name
	}
	return filepath.Join(d.Dir, name)
}

func (d *DailyFile) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}
