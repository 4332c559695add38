// Package app wires the configured components into a running session.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"pingtrend/internal/chart"
	"pingtrend/internal/config"
	"pingtrend/internal/csvlog"
	"pingtrend/internal/logging"
	"pingtrend/internal/models"
	"pingtrend/internal/monitor"
	"pingtrend/internal/netinfo"
	"pingtrend/internal/ping"
	"pingtrend/internal/targets"
	"pingtrend/internal/trend"
	"pingtrend/internal/ui"
	"pingtrend/internal/web"
)

// sparkWidth is the number of samples shown in sparklines.
const sparkWidth = 30

// logPaneLines is the number of log lines kept for the dashboard.
const logPaneLines = 200

var newExecProber = func() models.Prober { return ping.NewExec() }

// App holds the components of one session
type App struct {
	cfg    config.Config
	out    io.Writer
	level  *slog.LevelVar
	pane   *ui.LogPane
	logger *slog.Logger

	list    *targets.List
	store   *trend.Store
	prober  models.Prober
	closer  io.Closer
	csv     *csvlog.Logger
	monitor *monitor.Monitor
	web     *web.Server
}

// New builds the session. Plain output goes to out, logs to errOut unless the
// dashboard is used, in which case they are shown in its log pane.
func New(cfg config.Config, out, errOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{cfg: cfg, out: out, level: new(slog.LevelVar)}

	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a.level.Set(lvl)

	logOut := errOut
	if cfg.UI == config.UITerminal {
		a.pane = ui.NewLogPane(logPaneLines)
		logOut = a.pane
	}
	if a.logger, err = logging.New(logOut, cfg.LogFormat, a.level); err != nil {
		return nil, err
	}

	if a.list, err = buildTargets(cfg); err != nil {
		return nil, err
	}

	if err := a.buildProber(); err != nil {
		return nil, err
	}

	a.store = trend.New(cfg.Window)

	var sinks []models.Sink
	if cfg.CSV {
		layout, _ := csvlog.ParseLayout(cfg.CSVLayout)
		a.csv = csvlog.New(cfg.CSVDir, layout, a.logger)
		sinks = append(sinks, a.csv)
	}

	style, _ := chart.ParseStyle(cfg.ChartStyle)
	chartOpts := chart.DefaultOptions()
	chartOpts.Style = style

	if cfg.ChartOut != "" {
		sinks = append(sinks, chart.NewFileSink(cfg.ChartOut, a.store, chartOpts, a.logger))
	}

	a.monitor = monitor.New(monitor.Settings{
		Interval:       cfg.Interval,
		Timeout:        cfg.Timeout,
		ReportInterval: cfg.ReportInterval,
	}, a.list, a.prober, a.store, a.logger, sinks...)

	if cfg.Listen != "" {
		a.web = web.New(a.store, a.list, chartOpts, min(cfg.Interval, 10*time.Second), a.logger)
	}

	return a, nil
}

// buildTargets collects the configured targets, falling back to the defaults.
func buildTargets(cfg config.Config) (*targets.List, error) {
	configured := cfg.Targets
	if len(configured) == 0 && cfg.DefaultTargets {
		configured = netinfo.DefaultTargets()
	}

	list := targets.NewList()
	for _, t := range configured {
		if err := list.Add(t.Name, t.Address); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (a *App) buildProber() error {
	switch a.cfg.Prober {
	case config.ProberICMP:
		p, err := ping.NewICMP(a.cfg.Bind4, a.cfg.Bind6, a.cfg.Privileged, uint16(a.cfg.PayloadSize))
		if err != nil {
			return fmt.Errorf("failed to open icmp sockets: %w", err)
		}
		a.prober = p
		a.closer = p
	default:
		a.prober = newExecProber()
	}
	return nil
}

// Run starts the run and the front end, and blocks until ctx is done or the
// user quits the dashboard. The run is stopped before Run returns.
func (a *App) Run(ctx context.Context) error {
	if a.web != nil {
		if err := a.web.Start(a.cfg.Listen); err != nil {
			return fmt.Errorf("failed to start web server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.web.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("web server shutdown failed", "error", err)
			}
		}()
	}

	if err := a.monitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	var uiErr error
	switch a.cfg.UI {
	case config.UITerminal:
		dash := ui.NewDashboard(a.store, a.list, a.monitor, a.pane, a.level, a.logger, ui.DashboardOptions{
			Interval:   a.cfg.Interval,
			SparkWidth: sparkWidth,
		})
		uiErr = dash.Run(ctx)
	default:
		uiErr = ui.NewPrinter(a.out, a.store, sparkWidth).Run(ctx)
	}

	var stopErr error
	if a.monitor.Running() {
		stopErr = a.monitor.Stop()
	}
	if uiErr != nil {
		return uiErr
	}
	return stopErr
}

// Close releases the prober sockets
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
