package monitor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pingtrend/internal/models"
)

// tick probes every target once and delivers the samples in list order.
func (m *Monitor) tick(ctx context.Context, active []models.Target) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	at := m.now()
	samples := m.probeAll(ctx, active, at)

	// a stop during the probes discards the tick
	if ctx.Err() != nil {
		return
	}

	for _, s := range samples {
		m.logSample(s)
	}

	for _, sink := range m.sinks {
		if err := sink.Record(at, samples); err != nil {
			m.log.Error("Failed to record samples", "error", err)
		}
	}

	m.ticks++
}

// probeAll sends one echo probe per target concurrently and waits for all of them.
func (m *Monitor) probeAll(ctx context.Context, active []models.Target, at time.Time) []models.Sample {
	samples := make([]models.Sample, len(active))
	timeout := m.timeout()

	// resolution and process start-up count against the budget too
	ctx, cancel := context.WithTimeout(ctx, m.budget())
	defer cancel()

	var g errgroup.Group
	g.SetLimit(len(active))
	for i, target := range active {
		g.Go(func() error {
			s := m.prober.Probe(ctx, target, timeout)
			s.Time = at
			s.Target = target.Name
			s.Address = target.Address
			samples[i] = s
			return nil
		})
	}
	_ = g.Wait()

	return samples
}

func (m *Monitor) logSample(s models.Sample) {
	switch s.Status {
	case models.StatusOK:
		m.log.Debug("Reply", "target", s.Target, "address", s.Address, "rtt_ms", s.Millis())
	case models.StatusUnresolved:
		m.log.Info("Could not resolve", "target", s.Target, "address", s.Address, "error", s.Error)
	default:
		m.log.Info("Reply timed out", "target", s.Target, "address", s.Address, "error", s.Error)
	}
}
