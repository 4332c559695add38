package ping

import (
	"context"
	"errors"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingtrend/internal/models"
)

func TestParsePingOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected time.Duration
		ok       bool
	}{
		{
			name:     "macOS individual response",
			output:   "64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms",
			expected: 44347 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "macOS summary line",
			output:   "round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms",
			expected: 44347 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "Linux individual response",
			output:   "64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=12.3 ms",
			expected: 12300 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "busybox summary line",
			output:   "round-trip min/avg/max = 12.3/12.3/12.3 ms",
			expected: 12300 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "Windows response",
			output:   "Reply from 8.8.8.8: bytes=32 time=15ms TTL=118",
			expected: 15 * time.Millisecond,
			ok:       true,
		},
		{
			name:     "Windows sub-millisecond reported as upper bound",
			output:   "Reply from 8.8.8.8: bytes=32 time<1ms TTL=118",
			expected: time.Millisecond,
			ok:       true,
		},
		{
			name:   "No match",
			output: "ping: unknown host example.invalid",
		},
		{
			name:   "Empty output",
			output: "",
		},
		{
			name: "Multiple lines with macOS output",
			output: `PING 8.8.8.8 (8.8.8.8): 56 data bytes
64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms

--- 8.8.8.8 ping statistics ---
1 packets transmitted, 1 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms`,
			expected: 44347 * time.Microsecond,
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePingOutput(tt.output)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPingArgs(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"-n", "1", "-w", "1500", "192.0.2.1"}, pingArgs("windows", "192.0.2.1", 1500*time.Millisecond))
	assert.Equal([]string{"-c", "1", "-W", "1500", "192.0.2.1"}, pingArgs("darwin", "192.0.2.1", 1500*time.Millisecond))
	assert.Equal([]string{"-c", "1", "-W", "2", "192.0.2.1"}, pingArgs("linux", "192.0.2.1", 1500*time.Millisecond))
	assert.Equal([]string{"-c", "1", "-W", "1", "192.0.2.1"}, pingArgs("linux", "192.0.2.1", 200*time.Millisecond))
}

func TestExecPingerUnresolved(t *testing.T) {
	stubLookup(t, nil, errors.New("no such host"))

	sample := NewExec().Probe(context.Background(), models.Target{Name: "x", Address: "missing.test"}, time.Second)
	assert.Equal(t, models.StatusUnresolved, sample.Status)
	assert.Equal(t, "x", sample.Target)
	assert.True(t, sample.Millis() != sample.Millis(), "failed sample must have NaN latency")
}

func TestExecPingerMissingBinary(t *testing.T) {
	p := &ExecPinger{Binary: "/nonexistent/ping"}

	sample := p.Probe(context.Background(), models.Target{Name: "lo", Address: "127.0.0.1"}, time.Second)
	assert.Equal(t, models.StatusTimeout, sample.Status)
	assert.NotEmpty(t, sample.Error)
}

func TestExecPingerLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ping integration test in short mode")
	}
	if _, err := exec.LookPath("ping"); err != nil {
		t.Skip("ping binary not available on PATH")
	}

	sample := NewExec().Probe(context.Background(), models.Target{Name: "lo", Address: "127.0.0.1"}, 2*time.Second)
	if !sample.OK() {
		t.Skipf("loopback ping not permitted here: %s", sample.Error)
	}
	assert.Equal(t, "127.0.0.1", sample.Address)
	assert.GreaterOrEqual(t, sample.RTT, time.Duration(0))
}

// fakePing writes a shell script that prints output and exits with code.
func fakePing(t *testing.T, output string, code int) *ExecPinger {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "ping")
	script := "#!/bin/sh\ncat <<'OUT'\n" + output + "\nOUT\nexit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return &ExecPinger{Binary: path}
}

func TestExecPingerParsesReply(t *testing.T) {
	p := fakePing(t, "64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=12.5 ms", 0)

	sample := p.Probe(context.Background(), models.Target{Name: "x", Address: "192.0.2.1"}, time.Second)
	require.Equal(t, models.StatusOK, sample.Status, sample.Error)
	assert.Equal(t, 12500*time.Microsecond, sample.RTT)
}

func TestExecPingerUnparsableOutputIsNoReply(t *testing.T) {
	p := fakePing(t, "Reply from 192.0.2.1: Destination host unreachable.", 0)

	sample := p.Probe(context.Background(), models.Target{Name: "x", Address: "192.0.2.1"}, time.Second)
	assert.Equal(t, models.StatusTimeout, sample.Status)
	assert.Equal(t, errNoRTT.Error(), sample.Error)
	assert.Zero(t, sample.RTT)
}

func TestExecPingerResolutionCountsTowardTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	orig := lookupIPAddr
	lookupIPAddr = func(context.Context, string) ([]net.IPAddr, error) {
		<-release
		return nil, nil
	}
	t.Cleanup(func() { lookupIPAddr = orig })

	start := time.Now()
	sample := NewExec().Probe(context.Background(), models.Target{Name: "x", Address: "slow.test"}, 100*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, models.StatusUnresolved, sample.Status)
}

func TestExecPingerKilledAtTimeout(t *testing.T) {
	p := fakePing(t, "waiting", 0)
	// a script that never answers
	require.NoError(t, os.WriteFile(p.Binary, []byte("#!/bin/sh\nexec sleep 5\n"), 0o755))

	start := time.Now()
	sample := p.Probe(context.Background(), models.Target{Name: "x", Address: "192.0.2.1"}, 100*time.Millisecond)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, models.StatusTimeout, sample.Status)
	assert.Equal(t, errTimeout.Error(), sample.Error)
}
