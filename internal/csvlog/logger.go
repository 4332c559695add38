// Package csvlog appends probe samples to a per-run CSV file.
package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"pingtrend/internal/models"
)

// Layout selects the row format.
type Layout string

const (
	// LayoutLong writes one row per sample.
	LayoutLong Layout = "long"
	// LayoutWide writes one row per tick with a column per target.
	LayoutWide Layout = "wide"
)

var ErrUnknownLayout = errors.New("unknown csv layout")

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutLong, LayoutWide:
		return Layout(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// Logger writes every tick to a new file per run. A write failure disables
// the logger for the rest of the run; probing continues.
type Logger struct {
	dir    string
	layout Layout
	log    *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	file    *os.File
	w       *csv.Writer
	targets []models.Target
	rows    int
	failed  bool
}

// New creates a logger writing into dir.
func New(dir string, layout Layout, logger *slog.Logger) *Logger {
	return &Logger{
		dir:    dir,
		layout: layout,
		log:    logger,
		now:    time.Now,
	}
}

// maxSuffix bounds the collision suffixes tried for one second.
const maxSuffix = 100

// FileName returns the file name used for a run started at t. A positive n
// is appended for runs started within the same second.
func FileName(t time.Time, n int) string {
	base := t.Format("pingtrend-20060102-150405")
	if n > 0 {
		base += "-" + strconv.Itoa(n)
	}
	return base + ".csv"
}

// create opens a new run file without ever touching an existing one
func create(dir string, t time.Time) (*os.File, string, error) {
	for n := 0; n < maxSuffix; n++ {
		path := filepath.Join(dir, FileName(t, n))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("could not open %s for writing: %w", path, err)
		}
		return file, path, nil
	}
	return nil, "", fmt.Errorf("could not pick a free file name for %s in %s", FileName(t, 0), dir)
}

// Begin creates the run file and writes the header.
func (l *Logger) Begin(targets []models.Target) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create csv directory: %w", err)
	}

	file, path, err := create(l.dir, l.now())
	if err != nil {
		return err
	}

	l.file = file
	l.w = csv.NewWriter(file)
	l.targets = append([]models.Target(nil), targets...)
	l.rows = 0
	l.failed = false

	if err := l.write([][]string{l.header()}); err != nil {
		file.Close()
		l.file = nil
		return fmt.Errorf("could not write csv header: %w", err)
	}

	l.log.Info("Logging samples", "file", path, "layout", string(l.layout))
	return nil
}

func (l *Logger) header() []string {
	if l.layout == LayoutWide {
		row := []string{"Time"}
		for _, t := range l.targets {
			row = append(row, t.Name)
		}
		return row
	}
	return []string{"time", "target", "address", "status", "rtt_ms"}
}

// Record appends the samples of one tick and flushes.
func (l *Logger) Record(tick time.Time, samples []models.Sample) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil || l.failed {
		return nil
	}

	var rows [][]string
	if l.layout == LayoutWide {
		rows = [][]string{l.wideRow(tick, samples)}
	} else {
		rows = longRows(tick, samples)
	}

	if err := l.write(rows); err != nil {
		l.failed = true
		return fmt.Errorf("csv logging disabled after write to %s failed: %w", l.file.Name(), err)
	}

	l.rows += len(rows)
	return nil
}

func (l *Logger) write(rows [][]string) error {
	if err := l.w.WriteAll(rows); err != nil {
		return err
	}
	return l.w.Error()
}

func longRows(tick time.Time, samples []models.Sample) [][]string {
	rows := make([][]string, 0, len(samples))
	ts := tick.Format(time.RFC3339Nano)
	for _, s := range samples {
		rtt := ""
		if s.OK() {
			rtt = formatMillis(s)
		}
		rows = append(rows, []string{ts, s.Target, s.Address, string(s.Status), rtt})
	}
	return rows
}

func (l *Logger) wideRow(tick time.Time, samples []models.Sample) []string {
	byName := make(map[string]models.Sample, len(samples))
	for _, s := range samples {
		byName[s.Target] = s
	}

	row := []string{tick.Format("2006-01-02 15:04:05.000000")}
	for _, t := range l.targets {
		s, ok := byName[t.Name]
		switch {
		case !ok:
			row = append(row, "")
		case s.OK():
			row = append(row, formatMillis(s))
		default:
			row = append(row, s.Label())
		}
	}
	return row
}

func formatMillis(s models.Sample) string {
	return strconv.FormatFloat(s.Millis(), 'f', 3, 64)
}

// Rows returns the number of data rows written in the current run.
func (l *Logger) Rows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

// Path returns the current run file, or "" when no run is active.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// End flushes and closes the run file.
func (l *Logger) End() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	l.w.Flush()
	flushErr := l.w.Error()
	closeErr := l.file.Close()
	l.file = nil
	l.w = nil

	if l.failed {
		return nil
	}
	return errors.Join(flushErr, closeErr)
}
