// Package logging builds the structured logger shared by all components.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// Levels in the order they are cycled through.
var Levels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// New creates a logger writing to w in the given format ("text" or "json").
// The level is read from lv on every record so it can be changed at runtime.
func New(w io.Writer, format string, lv *slog.LevelVar) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: lv}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return slog.New(h), nil
}

// Cycle advances lv to the next level, wrapping from error back to debug.
func Cycle(lv *slog.LevelVar) slog.Level {
	current := lv.Level()
	next := Levels[0]
	for i, l := range Levels {
		if l == current {
			next = Levels[(i+1)%len(Levels)]
			break
		}
	}
	lv.Set(next)
	return next
}
