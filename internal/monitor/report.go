package monitor

import (
	"context"
	"time"
)

// reportWorker periodically logs the window statistics of every target
func (m *Monitor) reportWorker(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.settings.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.report()
		}
	}
}

func (m *Monitor) report() {
	for _, st := range m.store.Stats() {
		if st.PacketsSent == 0 {
			continue
		}
		m.log.Info("Report",
			"target", st.Target,
			"sent", st.PacketsSent,
			"loss_pct", st.PacketLoss,
			"best", st.Best,
			"mean", st.Mean,
			"median", st.Median,
			"worst", st.Worst,
			"stddev", st.StdDev,
		)
	}
}
