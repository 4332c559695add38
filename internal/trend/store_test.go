package trend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingtrend/internal/models"
)

var (
	gw     = models.Target{Name: "Gateway", Address: "192.168.1.1"}
	google = models.Target{Name: "Google", Address: "google.com"}
	t0     = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func tick(i int, rtts ...time.Duration) (time.Time, []models.Sample) {
	at := t0.Add(time.Duration(i) * time.Minute)
	targets := []models.Target{gw, google}
	samples := make([]models.Sample, len(rtts))
	for j, rtt := range rtts {
		samples[j] = models.Sample{Time: at, Target: targets[j].Name, Address: targets[j].Address, Status: models.StatusOK, RTT: rtt}
		if rtt < 0 {
			samples[j].Status = models.StatusTimeout
			samples[j].RTT = 0
			samples[j].Error = "no reply"
		}
	}
	return at, samples
}

func TestRecordAppendsPerTarget(t *testing.T) {
	s := New(0)
	require.NoError(t, s.Begin([]models.Target{gw, google}))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(tick(i, ms, -1)))
	}

	snap := s.Snapshot()
	assert.Len(t, snap.Ticks, 3)
	require.Len(t, snap.Series, 2)
	assert.Equal(t, gw, snap.Series[0].Target)
	assert.Len(t, snap.Series[0].Points, 3)
	assert.Len(t, snap.Series[1].Points, 3)
	assert.True(t, math.IsNaN(snap.Series[1].Millis()[0]), "failed probe must be a null value")
	assert.Equal(t, 1.0, snap.Series[0].Millis()[2])
}

func TestWindowKeepsNewest(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Begin([]models.Target{gw, google}))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(tick(i, time.Duration(i+1)*ms, ms)))
	}

	snap := s.Snapshot()
	assert.Equal(t, []time.Time{t0.Add(3 * time.Minute), t0.Add(4 * time.Minute)}, snap.Ticks)
	assert.Equal(t, []float64{4, 5}, snap.Series[0].Millis())

	stats := s.Stats()
	assert.Equal(t, 2, stats[0].PacketsSent, "window statistics")
	assert.Equal(t, 5, stats[0].TotalSent, "lifetime counter")
}

func TestStatsTrackLastError(t *testing.T) {
	s := New(10)
	require.NoError(t, s.Begin([]models.Target{gw, google}))
	require.NoError(t, s.Record(tick(0, ms, -1)))
	require.NoError(t, s.Record(tick(1, ms, 2*ms)))

	stats := s.Stats()
	assert.Equal(t, "Google", stats[1].Target)
	assert.Equal(t, "google.com", stats[1].Address)
	assert.Equal(t, "no reply", stats[1].LastError)
	assert.Equal(t, 1, stats[1].TotalLost)
	assert.EqualValues(t, 50, stats[1].PacketLoss)
}

func TestBeginResets(t *testing.T) {
	s := New(0)
	require.NoError(t, s.Begin([]models.Target{gw, google}))
	require.NoError(t, s.Record(tick(0, ms, ms)))

	require.NoError(t, s.Begin([]models.Target{google}))
	snap := s.Snapshot()
	assert.Empty(t, snap.Ticks)
	require.Len(t, snap.Series, 1)
	assert.Empty(t, snap.Series[0].Points)
}

func TestSnapshotIsCopy(t *testing.T) {
	s := New(0)
	require.NoError(t, s.Begin([]models.Target{gw}))
	require.NoError(t, s.Record(tick(0, ms)))

	snap := s.Snapshot()
	snap.Series[0].Points[0].RTT = time.Hour
	assert.Equal(t, ms, s.Snapshot().Series[0].Points[0].RTT)
}

func TestSubscribeCoalesces(t *testing.T) {
	s := New(0)
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Begin([]models.Target{gw}))
	require.NoError(t, s.Record(tick(0, ms)))
	require.NoError(t, s.Record(tick(1, ms)))

	select {
	case <-ch:
	default:
		t.Fatal("expected a notification")
	}
	select {
	case <-ch:
		t.Fatal("notifications should coalesce")
	default:
	}

	cancel()
	require.NoError(t, s.Record(tick(2, ms)))
	select {
	case <-ch:
		t.Fatal("cancelled subscription must not be notified")
	default:
	}
}
