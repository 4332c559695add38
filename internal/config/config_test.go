package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingtrend/internal/models"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	fs := newFlags(t)
	cfg, err := Load(fs, fs.Args())
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.Window)
	assert.Equal(t, "long", cfg.CSVLayout)
	assert.Equal(t, ProberExec, cfg.Prober)
	assert.Equal(t, UITerminal, cfg.UI)
	assert.True(t, cfg.DefaultTargets)
	assert.Empty(t, cfg.Targets)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFlagsAndArgs(t *testing.T) {
	fs := newFlags(t, "-i", "5s", "--csv", "--csv-layout", "wide", "--ui", "plain", "Google=google.com", "1.1.1.1")
	cfg, err := Load(fs, fs.Args())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.True(t, cfg.CSV)
	assert.Equal(t, "wide", cfg.CSVLayout)
	assert.Equal(t, UIPlain, cfg.UI)
	assert.Equal(t, []models.Target{
		{Name: "Google", Address: "google.com"},
		{Name: "1.1.1.1", Address: "1.1.1.1"},
	}, cfg.Targets)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pingtrend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
interval: 10s
window: 20
chart-style: dark
targets:
  - name: Router
    address: 192.168.1.1
  - address: example.com
`), 0o644))

	fs := newFlags(t, "--config", path, "--window", "30", "extra.example")
	cfg, err := Load(fs, fs.Args())
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, 30, cfg.Window, "flags win over the config file")
	assert.Equal(t, "dark", cfg.ChartStyle)
	assert.Equal(t, []models.Target{
		{Name: "Router", Address: "192.168.1.1"},
		{Name: "example.com", Address: "example.com"},
		{Name: "extra.example", Address: "extra.example"},
	}, cfg.Targets)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PINGTREND_CSV_DIR", "/tmp/pings")

	fs := newFlags(t)
	cfg, err := Load(fs, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pings", cfg.CSVDir)
}

func TestLoadMissingConfigFile(t *testing.T) {
	fs := newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(fs, nil)
	assert.Error(t, err)
}

func TestLoadInvalidTarget(t *testing.T) {
	fs := newFlags(t, "=")
	_, err := Load(fs, fs.Args())
	assert.ErrorContains(t, err, "invalid target")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		fs := newFlags(t)
		cfg, err := Load(fs, nil)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"negative window", func(c *Config) { c.Window = -1 }},
		{"csv without dir", func(c *Config) { c.CSV = true; c.CSVDir = "" }},
		{"bad layout", func(c *Config) { c.CSVLayout = "tall" }},
		{"bad style", func(c *Config) { c.ChartStyle = "classic" }},
		{"bad prober", func(c *Config) { c.Prober = "tcp" }},
		{"icmp unbound", func(c *Config) { c.Prober = ProberICMP; c.Bind4 = ""; c.Bind6 = "" }},
		{"bad ui", func(c *Config) { c.UI = "gui" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
