package chart

import (
	"log/slog"
	"time"

	"pingtrend/internal/models"
	"pingtrend/internal/trend"
)

// Snapshotter provides the data to plot
type Snapshotter interface {
	Snapshot() trend.Snapshot
}

// FileSink writes the chart of a run to a PNG file when the run ends.
type FileSink struct {
	path   string
	source Snapshotter
	opts   Options
	log    *slog.Logger
}

// NewFileSink creates a sink that renders source into path on End.
func NewFileSink(path string, source Snapshotter, opts Options, logger *slog.Logger) *FileSink {
	return &FileSink{path: path, source: source, opts: opts, log: logger}
}

func (s *FileSink) Begin([]models.Target) error { return nil }

func (s *FileSink) Record(time.Time, []models.Sample) error { return nil }

// End renders the final chart. A run without samples writes nothing.
func (s *FileSink) End() error {
	snap := s.source.Snapshot()
	if len(snap.Ticks) == 0 {
		s.log.Debug("no samples, skipping chart", "path", s.path)
		return nil
	}
	if err := WriteFile(s.path, snap, s.opts); err != nil {
		return err
	}
	s.log.Info("chart written", "path", s.path, "ticks", len(snap.Ticks))
	return nil
}
