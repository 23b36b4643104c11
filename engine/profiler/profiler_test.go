package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsPerInterval(t *testing.T) {
	var buf bytes.Buffer
	prev := common.Logger()
	common.SetLogger(common.NewLogger(&buf, slog.LevelInfo))
	t.Cleanup(func() { common.SetLogger(prev) })

	start := time.Unix(1000, 0)
	clock := start
	p := NewProfiler(time.Second)
	p.lastTime = start
	p.now = func() time.Time { return clock }
	p.SetCounter("chunks", 25)

	for i := 0; i < 9; i++ {
		clock = clock.Add(100 * time.Millisecond)
		_, reported := p.Tick()
		require.False(t, reported)
	}
	clock = clock.Add(100 * time.Millisecond)
	stats, reported := p.Tick()
	require.True(t, reported)
	assert.InDelta(t, 10.0, stats.FPS, 1e-9)
	assert.Equal(t, 25, stats.Counters["chunks"])
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "chunks=25")

	clock = clock.Add(100 * time.Millisecond)
	_, reported = p.Tick()
	assert.False(t, reported, "frame count restarts after a report")
}

func TestNewProfilerDefaultsInterval(t *testing.T) {
	assert.Equal(t, time.Second, NewProfiler(0).updateInterval)
	assert.Equal(t, 250*time.Millisecond, NewProfiler(250*time.Millisecond).updateInterval)
}
