package ui

import (
	"bytes"
	"sync"
)

// LogPane keeps the most recent log lines for display in the dashboard.
// It is an io.Writer so a slog handler can write to it.
type LogPane struct {
	mu     sync.Mutex
	keep   int
	lines  []string
	notify chan struct{}
}

// NewLogPane creates a pane holding up to keep lines; keep <= 0 keeps all.
func NewLogPane(keep int) *LogPane {
	return &LogPane{
		keep:   keep,
		notify: make(chan struct{}, 1),
	}
}

func (lp *LogPane) Write(p []byte) (n int, err error) {
	lp.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if line = bytes.TrimSpace(line); len(line) > 0 {
			lp.lines = append(lp.lines, string(line))
		}
	}
	lp.truncate()
	lp.mu.Unlock()

	select {
	case lp.notify <- struct{}{}:
	default:
	}
	return len(p), nil
}

func (lp *LogPane) truncate() {
	if lp.keep <= 0 {
		return
	}
	if delta := len(lp.lines) - lp.keep; delta > 0 {
		lp.lines = lp.lines[delta:]
	}
}

// Lines returns a copy of the kept lines, oldest first.
func (lp *LogPane) Lines() []string {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return append([]string(nil), lp.lines...)
}

// Changed receives a value after new lines were written.
func (lp *LogPane) Changed() <-chan struct{} {
	return lp.notify
}
