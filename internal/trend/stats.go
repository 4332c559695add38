package trend

import (
	"math"
	"slices"
	"time"

	"pingtrend/internal/models"
)

// compute summarises one target's window. Last is zero unless the newest
// point is a reply.
func compute(points []Point) models.Stats {
	if len(points) == 0 {
		return models.Stats{}
	}

	stats := models.Stats{PacketsSent: len(points)}
	rtts := make([]time.Duration, 0, len(points))
	var sum float64
	for _, p := range points {
		if !p.OK() {
			stats.PacketsLost++
			stats.Last = 0
			continue
		}
		rtts = append(rtts, p.RTT)
		sum += float64(p.RTT)
		stats.Last = p.RTT
	}
	stats.PacketLoss = float64(stats.PacketsLost) / float64(stats.PacketsSent) * 100

	n := len(rtts)
	if n == 0 {
		return stats
	}

	mean := sum / float64(n)
	var squares float64
	for _, rtt := range rtts {
		squares += math.Pow(float64(rtt)-mean, 2)
	}
	stats.Mean = time.Duration(mean)
	stats.StdDev = time.Duration(math.Sqrt(squares / float64(n)))

	slices.Sort(rtts)
	stats.Best, stats.Worst = rtts[0], rtts[n-1]
	if n%2 == 0 {
		stats.Median = (rtts[n/2-1] + rtts[n/2]) / 2
	} else {
		stats.Median = rtts[n/2]
	}
	return stats
}
