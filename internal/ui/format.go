package ui

import (
	"fmt"
	"time"
)

const tsDividend = float64(time.Millisecond) / float64(time.Nanosecond)

// ts formats a duration the way the dashboard columns show it.
func ts(dur time.Duration) string {
	if dur == 0 {
		return "n/a"
	}
	if 10*time.Microsecond < dur && dur < time.Second {
		return fmt.Sprintf("%0.2fms", float64(dur.Nanoseconds())/tsDividend)
	}
	return dur.String()
}
