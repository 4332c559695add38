package models

import (
	"context"
	"time"
)

// Target is a host to probe. Name is used for the legend and CSV columns.
type Target struct {
	Name    string `json:"name" mapstructure:"name"`
	Address string `json:"address" mapstructure:"address"`
}

// Prober defines echo probe execution
type Prober interface {
	Probe(ctx context.Context, target Target, timeout time.Duration) Sample
}

// Sink receives the samples of every tick while a run is active
type Sink interface {
	Begin(targets []Target) error
	Record(tick time.Time, samples []Sample) error
	End() error
}

// Monitor interface defines the run lifecycle
type Monitor interface {
	Start(ctx context.Context) error
	Stop() error
	Running() bool
}
