package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pingtrend/internal/models"
)

const ms = time.Millisecond

func ok(rtt time.Duration) Point { return Point{RTT: rtt, Status: models.StatusOK} }
func lost() Point                { return Point{Status: models.StatusTimeout} }

func BenchmarkCompute(b *testing.B) {
	points := make([]Point, 100)
	for i := range points {
		points[i] = ok(time.Duration(i) * ms)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		compute(points)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   models.Stats
	}{
		{
			name: "empty",
		},
		{
			name:   "only losses",
			points: []Point{lost(), lost()},
			want:   models.Stats{PacketsSent: 2, PacketsLost: 2, PacketLoss: 100},
		},
		{
			name:   "steady replies then a loss",
			points: []Point{ok(100 * ms), ok(100 * ms), lost()},
			want: models.Stats{
				PacketsSent: 3, PacketsLost: 1, PacketLoss: 100.0 / 3,
				Best: 100 * ms, Worst: 100 * ms, Median: 100 * ms, Mean: 100 * ms,
			},
		},
		{
			name:   "spread with a trailing loss",
			points: []Point{ok(100 * ms), ok(100 * ms), lost(), ok(200 * ms), ok(100 * ms), lost()},
			want: models.Stats{
				PacketsSent: 6, PacketsLost: 2, PacketLoss: 100.0 * 2 / 6,
				Best: 100 * ms, Worst: 200 * ms, Median: 100 * ms, Mean: 125 * ms, StdDev: 43301270,
			},
		},
		{
			name:   "reply after a loss",
			points: []Point{ok(100 * ms), lost(), ok(200 * ms), ok(0)},
			want: models.Stats{
				PacketsSent: 4, PacketsLost: 1, PacketLoss: 25,
				Last: 0, Best: 0, Worst: 200 * ms, Median: 100 * ms, Mean: 100 * ms, StdDev: 81649658,
			},
		},
		{
			name:   "last reply",
			points: []Point{lost(), ok(30 * ms)},
			want: models.Stats{
				PacketsSent: 2, PacketsLost: 1, PacketLoss: 50,
				Last: 30 * ms, Best: 30 * ms, Worst: 30 * ms, Median: 30 * ms, Mean: 30 * ms,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compute(tt.points)
			assert.InDelta(t, tt.want.PacketLoss, got.PacketLoss, 1e-9)
			got.PacketLoss = tt.want.PacketLoss
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeMedian(t *testing.T) {
	points := []Point{ok(300 * ms), ok(200 * ms), ok(100 * ms), ok(0)}
	assert.Equal(t, 150*ms, compute(points).Median)

	points = append(points, ok(400*ms))
	assert.Equal(t, 200*ms, compute(points).Median)
}

func TestComputeLeavesPointsUnsorted(t *testing.T) {
	points := []Point{ok(300 * ms), ok(100 * ms), ok(200 * ms)}
	compute(points)
	assert.Equal(t, []Point{ok(300 * ms), ok(100 * ms), ok(200 * ms)}, points)
}
