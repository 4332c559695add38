package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingtrend/internal/config"
	"pingtrend/internal/models"
	"pingtrend/internal/targets"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, target models.Target, _ time.Duration) models.Sample {
	if target.Name == "Down" {
		return models.Sample{Status: models.StatusTimeout, Error: "no reply"}
	}
	return models.Sample{Status: models.StatusOK, RTT: 3 * time.Millisecond}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Targets: []models.Target{
			{Name: "Loopback", Address: "127.0.0.1"},
			{Name: "Down", Address: "192.0.2.1"},
		},
		Interval:   50 * time.Millisecond,
		Timeout:    20 * time.Millisecond,
		Window:     100,
		CSV:        true,
		CSVDir:     dir,
		CSVLayout:  "long",
		Prober:     config.ProberExec,
		UI:         config.UIPlain,
		Listen:     "127.0.0.1:0",
		ChartStyle: "default",
		ChartOut:   filepath.Join(dir, "trend.png"),
		LogLevel:   "debug",
		LogFormat:  "text",
	}
}

func stubProber(t *testing.T) {
	t.Helper()
	orig := newExecProber
	newExecProber = func() models.Prober { return fakeProber{} }
	t.Cleanup(func() { newExecProber = orig })
}

func TestRunPlain(t *testing.T) {
	stubProber(t)
	cfg := testConfig(t)

	var out bytes.Buffer
	var errOut syncBuffer
	a, err := New(cfg, &out, &errOut)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	ticks := a.monitor.Ticks()
	require.Positive(t, ticks)
	assert.False(t, a.monitor.Running())

	assert.Equal(t, ticks*2, a.csv.Rows(), "one csv row per target per tick")
	assert.Contains(t, out.String(), "Loopback")
	assert.Contains(t, out.String(), "No reply")
	assert.Contains(t, errOut.String(), "Run started")
	assert.Contains(t, errOut.String(), "chart written")

	png, err := os.ReadFile(cfg.ChartOut)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	files, err := filepath.Glob(filepath.Join(cfg.CSVDir, "pingtrend-*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,target,address,status,rtt_ms\n"))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Interval = 0

	_, err := New(cfg, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestRunWithoutTargets(t *testing.T) {
	stubProber(t)
	cfg := testConfig(t)
	cfg.Targets = nil
	cfg.DefaultTargets = false
	cfg.Listen = ""

	a, err := New(cfg, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	err = a.Run(context.Background())
	assert.ErrorContains(t, err, "no targets")
}

func TestBuildTargets(t *testing.T) {
	cfg := config.Config{DefaultTargets: true}
	list, err := buildTargets(cfg)
	require.NoError(t, err)
	names := make([]string, 0, list.Len())
	for _, tg := range list.Targets() {
		names = append(names, tg.Name)
	}
	assert.Contains(t, names, "Google")

	cfg.Targets = []models.Target{{Name: "a", Address: "1.1.1.1"}, {Name: "A", Address: "8.8.8.8"}}
	_, err = buildTargets(cfg)
	assert.True(t, errors.Is(err, targets.ErrDuplicateTarget))

	cfg.Targets = nil
	cfg.DefaultTargets = false
	list, err = buildTargets(cfg)
	require.NoError(t, err)
	assert.Zero(t, list.Len())
}

func TestTerminalModeLogsToPane(t *testing.T) {
	stubProber(t)
	cfg := testConfig(t)
	cfg.UI = config.UITerminal

	var errOut bytes.Buffer
	a, err := New(cfg, &bytes.Buffer{}, &errOut)
	require.NoError(t, err)

	a.logger.Info("hello pane")
	assert.Empty(t, errOut.String())
	require.NotEmpty(t, a.pane.Lines())
	assert.Contains(t, a.pane.Lines()[0], "hello pane")
}
