package ping

import (
	"context"
	"errors"
	"math"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"pingtrend/internal/models"
)

var rttPatterns = []*regexp.Regexp{
	regexp.MustCompile(`time[=<]([0-9.]+)\s*ms`),
	regexp.MustCompile(`round-trip min/avg/max(?:/stddev)? = [0-9.]+/([0-9.]+)/`),
}

var errNoRTT = errors.New("no round trip time in ping output")

// ExecPinger probes targets by running the system ping binary once per probe.
type ExecPinger struct {
	Binary string
}

// NewExec creates a new ExecPinger using the ping binary found on PATH
func NewExec() *ExecPinger {
	return &ExecPinger{Binary: "ping"}
}

// Probe resolves the target and sends a single echo request. Resolution
// and the ping process share the timeout.
func (p *ExecPinger) Probe(ctx context.Context, target models.Target, timeout time.Duration) models.Sample {
	sample := models.Sample{
		Time:    time.Now(),
		Target:  target.Name,
		Address: target.Address,
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr, err := resolve(ctx, target.Address, true, true)
	if err != nil {
		sample.Status = models.StatusUnresolved
		sample.Error = err.Error()
		return sample
	}

	remaining := timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining = time.Until(deadline)
	}

	output, err := exec.CommandContext(ctx, p.Binary, pingArgs(runtime.GOOS, addr.String(), remaining)...).CombinedOutput()
	if err != nil {
		sample.Status = models.StatusTimeout
		sample.Error = err.Error()
		if ctx.Err() != nil {
			sample.Error = errTimeout.Error()
		}
		return sample
	}

	// windows ping exits 0 on "Destination host unreachable"
	rtt, ok := parsePingOutput(string(output))
	if !ok {
		sample.Status = models.StatusTimeout
		sample.Error = errNoRTT.Error()
		return sample
	}

	sample.Status = models.StatusOK
	sample.RTT = rtt
	return sample
}

// pingArgs builds the platform-specific argument list for a single echo request
func pingArgs(goos, addr string, timeout time.Duration) []string {
	switch goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10), addr}
	case "darwin", "freebsd":
		return []string{"-c", "1", "-W", strconv.FormatInt(timeout.Milliseconds(), 10), addr}
	default:
		secs := int(timeout.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		return []string{"-c", "1", "-W", strconv.Itoa(secs), addr}
	}
}

// parsePingOutput parses RTT from ping output
func parsePingOutput(output string) (time.Duration, bool) {
	// Linux/Mac: "time=XX.X ms"
	// Windows: "time=XXms" or "time<1ms"
	for _, re := range rttPatterns {
		matches := re.FindStringSubmatch(output)
		if len(matches) > 1 {
			if ms, err := strconv.ParseFloat(matches[1], 64); err == nil {
				return time.Duration(math.Round(ms * float64(time.Millisecond))), true
			}
		}
	}

	return 0, false
}
