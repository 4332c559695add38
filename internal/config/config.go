package config

import (
	"fmt"
	"time"

	"pingtrend/internal/chart"
	"pingtrend/internal/csvlog"
	"pingtrend/internal/models"
)

// Config holds all configuration for a pingtrend session
type Config struct {
	Targets        []models.Target
	DefaultTargets bool

	Interval       time.Duration
	Timeout        time.Duration
	Window         int
	ReportInterval time.Duration

	CSV       bool
	CSVDir    string
	CSVLayout string

	Prober      string
	Privileged  bool
	Bind4       string
	Bind6       string
	PayloadSize int

	UI         string
	Listen     string
	ChartStyle string
	ChartOut   string

	LogLevel  string
	LogFormat string
}

// Prober names
const (
	ProberExec = "exec"
	ProberICMP = "icmp"
)

// UI names
const (
	UITerminal = "tui"
	UIPlain    = "plain"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Window < 0 {
		return fmt.Errorf("window must not be negative")
	}
	if c.ReportInterval < 0 {
		return fmt.Errorf("report interval must not be negative")
	}
	if c.CSV && c.CSVDir == "" {
		return fmt.Errorf("csv directory cannot be empty")
	}
	if _, err := csvlog.ParseLayout(c.CSVLayout); err != nil {
		return err
	}
	if _, err := chart.ParseStyle(c.ChartStyle); err != nil {
		return err
	}
	switch c.Prober {
	case ProberExec, ProberICMP:
	default:
		return fmt.Errorf("prober must be %q or %q, got %q", ProberExec, ProberICMP, c.Prober)
	}
	if c.Prober == ProberICMP && c.Bind4 == "" && c.Bind6 == "" {
		return fmt.Errorf("icmp prober needs at least one bind address")
	}
	if c.PayloadSize < 0 || c.PayloadSize > 65000 {
		return fmt.Errorf("payload size must be between 0 and 65000")
	}
	switch c.UI {
	case UITerminal, UIPlain:
	default:
		return fmt.Errorf("ui must be %q or %q, got %q", UITerminal, UIPlain, c.UI)
	}
	return nil
}
