package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"pingtrend/internal/models"
	"pingtrend/internal/targets"
	"pingtrend/internal/trend"
)

var (
	ErrNoTargets       = errors.New("no targets are slated for probing")
	ErrInvalidInterval = errors.New("interval must be greater than zero")
	ErrAlreadyRunning  = errors.New("run is already active")
	ErrNotRunning      = errors.New("no run is active")
)

// minLead is the shortest delay accepted before the first slot.
const minLead = 5 * time.Millisecond

// tickShare is the part of the interval, in tenths, a tick may spend probing.
// The rest covers scheduler latency and delivery to the sinks, so a tick is
// always done before the next slot.
const tickShare = 8

// Settings are fixed for the duration of a run.
type Settings struct {
	Interval       time.Duration
	Timeout        time.Duration
	ReportInterval time.Duration
}

// Monitor coordinates probe runs: one probe per target per interval slot
type Monitor struct {
	settings Settings
	list     *targets.List
	prober   models.Prober
	sinks    []models.Sink
	store    *trend.Store
	log      *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	running   bool
	active    []models.Target
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	tickMu sync.Mutex
	ticks  int
}

// New creates a new Monitor. Every tick is delivered to the store and the sinks, in that order.
func New(settings Settings, list *targets.List, prober models.Prober, store *trend.Store, logger *slog.Logger, sinks ...models.Sink) *Monitor {
	all := make([]models.Sink, 0, len(sinks)+1)
	if store != nil {
		all = append(all, store)
	}
	all = append(all, sinks...)

	return &Monitor{
		settings: settings,
		list:     list,
		prober:   prober,
		sinks:    all,
		store:    store,
		log:      logger,
		now:      time.Now,
	}
}

// Start freezes the target list, opens the sinks and schedules the ticks.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}
	if m.settings.Interval <= 0 {
		return ErrInvalidInterval
	}

	active := m.list.Lock()
	if len(active) == 0 {
		m.list.Unlock()
		return ErrNoTargets
	}

	if err := m.beginSinks(active); err != nil {
		m.list.Unlock()
		return err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		m.endSinks()
		m.list.Unlock()
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	first := NextSlot(m.now(), m.settings.Interval)

	_, err = scheduler.NewJob(
		gocron.DurationJob(m.settings.Interval),
		gocron.NewTask(func() {
			m.tick(runCtx, active)
		}),
		gocron.WithStartAt(gocron.WithStartDateTime(first)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		m.endSinks()
		m.list.Unlock()
		return fmt.Errorf("failed to create probe job: %w", err)
	}

	m.tickMu.Lock()
	m.ticks = 0
	m.tickMu.Unlock()

	m.active = active
	m.scheduler = scheduler
	m.cancel = cancel
	m.running = true

	scheduler.Start()

	if m.settings.ReportInterval > 0 && m.store != nil {
		m.wg.Add(1)
		go m.reportWorker(runCtx)
	}

	m.log.Info("Run started",
		"targets", len(active),
		"interval", m.settings.Interval,
		"timeout", m.timeout(),
		"first_tick", first.Format(time.TimeOnly),
	)
	return nil
}

// Stop halts further sample generation. It waits for an in-flight tick;
// once it returns no sink receives samples.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return ErrNotRunning
	}

	m.cancel()
	shutdownErr := m.scheduler.Shutdown()

	// wait for a tick that passed its cancellation check
	m.tickMu.Lock()
	ticks := m.ticks
	m.tickMu.Unlock()

	m.wg.Wait()
	endErr := m.endSinks()
	m.list.Unlock()

	m.running = false
	m.active = nil
	m.scheduler = nil

	m.log.Info("Run stopped", "ticks", ticks)
	if shutdownErr != nil {
		shutdownErr = fmt.Errorf("failed to stop scheduler: %w", shutdownErr)
	}
	return errors.Join(shutdownErr, endErr)
}

// Running reports whether a run is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Ticks returns the number of completed ticks in the current or last run.
func (m *Monitor) Ticks() int {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	return m.ticks
}

func (m *Monitor) beginSinks(active []models.Target) error {
	for i, sink := range m.sinks {
		if err := sink.Begin(active); err != nil {
			for _, started := range m.sinks[:i] {
				_ = started.End()
			}
			return err
		}
	}
	return nil
}

func (m *Monitor) endSinks() error {
	var errs []error
	for _, sink := range m.sinks {
		errs = append(errs, sink.End())
	}
	return errors.Join(errs...)
}

// budget is the time a tick may spend probing.
func (m *Monitor) budget() time.Duration {
	return m.settings.Interval * tickShare / 10
}

// timeout is the per-probe timeout, never longer than the tick budget
func (m *Monitor) timeout() time.Duration {
	if m.settings.Timeout <= 0 || m.settings.Timeout > m.budget() {
		return m.budget()
	}
	return m.settings.Timeout
}

// NextSlot returns the next wall-clock multiple of interval after now.
func NextSlot(now time.Time, interval time.Duration) time.Time {
	next := now.Truncate(interval).Add(interval)
	if next.Sub(now) < minLead {
		next = next.Add(interval)
	}
	return next
}
