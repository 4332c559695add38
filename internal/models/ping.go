package models

import (
	"math"
	"time"
)

// Status classifies the outcome of a single echo probe
type Status string

const (
	StatusOK         Status = "ok"
	StatusTimeout    Status = "timeout"
	StatusUnresolved Status = "unresolved"
)

// Sample represents a single probe measurement for one target
type Sample struct {
	Time    time.Time     `json:"time"`
	Target  string        `json:"target"`
	Address string        `json:"address"`
	Status  Status        `json:"status"`
	RTT     time.Duration `json:"rtt_ns"`
	Error   string        `json:"error,omitempty"`
}

// OK reports whether the probe got a reply.
func (s Sample) OK() bool {
	return s.Status == StatusOK
}

// Millis returns the round trip time in milliseconds, or NaN for failed probes.
func (s Sample) Millis() float64 {
	if !s.OK() {
		return math.NaN()
	}
	return float64(s.RTT) / float64(time.Millisecond)
}

// Label is the human readable form used in the wide CSV layout and log output
func (s Sample) Label() string {
	switch s.Status {
	case StatusTimeout:
		return "No reply"
	case StatusUnresolved:
		return "Cannot resolve"
	}
	return ""
}
