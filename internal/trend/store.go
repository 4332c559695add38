// Package trend accumulates probe samples into per-target time series.
package trend

import (
	"sync"
	"time"

	"pingtrend/internal/models"
)

// Point is a single measurement in a series.
type Point struct {
	Time   time.Time
	RTT    time.Duration
	Status models.Status
}

// OK reports whether the probe got a reply.
func (p Point) OK() bool {
	return p.Status == models.StatusOK
}

// Series is the trend of one target.
type Series struct {
	Target models.Target
	Points []Point
}

// Millis returns the series latencies in milliseconds, NaN for failed probes.
func (s Series) Millis() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = models.Sample{Status: p.Status, RTT: p.RTT}.Millis()
	}
	return out
}

// Snapshot is an immutable copy of the store contents.
type Snapshot struct {
	Ticks  []time.Time
	Series []Series
}

type series struct {
	target    models.Target
	points    []Point
	totalSent int
	totalLost int
	lastErr   string
}

// Store keeps the samples of the current run. A window > 0 keeps only the
// newest window points per target; 0 keeps everything.
type Store struct {
	window int

	mu     sync.RWMutex
	ticks  []time.Time
	series []*series
	index  map[string]int

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// New creates an empty store.
func New(window int) *Store {
	if window < 0 {
		window = 0
	}
	return &Store{
		window: window,
		index:  make(map[string]int),
		subs:   make(map[chan struct{}]struct{}),
	}
}

// Begin resets the store for a new run over the given targets.
func (s *Store) Begin(targets []models.Target) error {
	s.mu.Lock()
	s.ticks = nil
	s.series = make([]*series, len(targets))
	s.index = make(map[string]int, len(targets))
	for i, t := range targets {
		s.series[i] = &series{target: t}
		s.index[t.Name] = i
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Record appends the samples of one tick.
func (s *Store) Record(tick time.Time, samples []models.Sample) error {
	s.mu.Lock()
	s.ticks = s.trimTicks(append(s.ticks, tick))
	for _, sample := range samples {
		i, ok := s.index[sample.Target]
		if !ok {
			i = len(s.series)
			s.series = append(s.series, &series{target: models.Target{Name: sample.Target, Address: sample.Address}})
			s.index[sample.Target] = i
		}
		s.series[i].add(Point{Time: tick, RTT: sample.RTT, Status: sample.Status}, sample.Error, s.window)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// End is a no-op; the data stays available after the run.
func (s *Store) End() error {
	return nil
}

func (s *Store) trimTicks(ticks []time.Time) []time.Time {
	if s.window > 0 && len(ticks) > s.window {
		return ticks[len(ticks)-s.window:]
	}
	return ticks
}

func (sr *series) add(p Point, errMsg string, window int) {
	sr.points = append(sr.points, p)
	if window > 0 && len(sr.points) > window {
		sr.points = sr.points[len(sr.points)-window:]
	}
	sr.totalSent++
	if !p.OK() {
		sr.totalLost++
		sr.lastErr = errMsg
	}
}

// Snapshot returns a copy of all series.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Ticks:  append([]time.Time(nil), s.ticks...),
		Series: make([]Series, len(s.series)),
	}
	for i, sr := range s.series {
		snap.Series[i] = Series{
			Target: sr.target,
			Points: append([]Point(nil), sr.points...),
		}
	}
	return snap
}

// Stats computes the statistics of every target over the window.
func (s *Store) Stats() []models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Stats, len(s.series))
	for i, sr := range s.series {
		st := compute(sr.points)
		st.Target = sr.target.Name
		st.Address = sr.target.Address
		st.TotalSent = sr.totalSent
		st.TotalLost = sr.totalLost
		st.LastError = sr.lastErr
		out[i] = st
	}
	return out
}

// Len returns the number of ticks currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ticks)
}

// Subscribe returns a channel that receives a value after every change. The
// channel is buffered by one; notifications coalesce when the reader lags.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
