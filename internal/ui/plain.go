package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pingtrend/internal/models"
	"pingtrend/internal/trend"
)

// slowThreshold colors replies at or above it as a warning.
const slowThreshold = 200 * time.Millisecond

// Printer writes one line per target for every new tick.
type Printer struct {
	w      io.Writer
	source Source
	width  int
	last   time.Time
}

// NewPrinter creates a printer with sparklines of the given width.
func NewPrinter(w io.Writer, source Source, width int) *Printer {
	return &Printer{w: w, source: source, width: width}
}

// Run prints every tick recorded in the source until ctx is done.
func (p *Printer) Run(ctx context.Context) error {
	changed, unsubscribe := p.source.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			p.Flush()
			return nil
		case <-changed:
			p.Flush()
		}
	}
}

// Flush prints the ticks that were not printed yet.
func (p *Printer) Flush() {
	snap := p.source.Snapshot()
	if len(snap.Ticks) == 0 {
		p.last = time.Time{}
		return
	}

	var pending []time.Time
	for _, tick := range snap.Ticks {
		if tick.After(p.last) {
			pending = append(pending, tick)
		}
	}
	if len(pending) == 0 {
		return
	}

	stats := p.source.Stats()
	for _, tick := range pending {
		for i, sr := range snap.Series {
			point, ok := pointAt(sr, tick)
			if !ok {
				continue
			}
			var st models.Stats
			if i < len(stats) {
				st = stats[i]
			}
			fmt.Fprintln(p.w, p.line(tick, sr, point, st))
		}
	}
	p.last = pending[len(pending)-1]
}

func (p *Printer) line(tick time.Time, sr trend.Series, point trend.Point, st models.Stats) string {
	var result string
	switch {
	case !point.OK():
		result = failStyle.Render(models.Sample{Status: point.Status}.Label())
	case point.RTT >= slowThreshold:
		result = slowStyle.Render(ts(point.RTT))
	default:
		result = okStyle.Render(ts(point.RTT))
	}

	parts := []string{
		timeStyle.Render(tick.Format(time.DateTime)),
		nameStyle.Render(sr.Target.Name),
		addressStyle.Render(sr.Target.Address),
		result,
		RenderSparkline(sr.Millis(), p.width),
		fmt.Sprintf("loss %0.1f%%", st.PacketLoss),
	}
	return strings.Join(parts, " ")
}

func pointAt(sr trend.Series, tick time.Time) (trend.Point, bool) {
	for i := len(sr.Points) - 1; i >= 0; i-- {
		if sr.Points[i].Time.Equal(tick) {
			return sr.Points[i], true
		}
		if sr.Points[i].Time.Before(tick) {
			break
		}
	}
	return trend.Point{}, false
}
