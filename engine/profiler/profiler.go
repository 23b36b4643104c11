package profiler

import (
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
)

// Stats is one interval's worth of frame and memory statistics.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64 // MB allocated per second over the interval
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
	Counters    map[string]int
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the engine logger at a configurable interval, along with any
// counters the caller has set (loaded chunks, pending meshes).
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	counters       map[string]int
	now            func() time.Time
}

// NewProfiler creates a new Profiler. A non-positive interval defaults to 1 second.
//
// Parameters:
//   - interval: how often stats are reported
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		counters:       make(map[string]int),
		now:            time.Now,
	}
}

// SetCounter records a named value reported with the next stats line.
func (p *Profiler) SetCounter(name string, value int) {
	p.counters[name] = value
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - Stats: the interval's statistics, zero unless reported
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	stats := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		Counters:    maps.Clone(p.counters),
	}

	if gcCount := stats.GCCount; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		stats.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	attrs := []any{
		slog.Float64("fps", stats.FPS),
		slog.Float64("heap_mb", stats.HeapMB),
		slog.Float64("alloc_mb_s", stats.AllocRateMB),
		slog.Uint64("gc", uint64(stats.GCCount)),
		slog.Uint64("gc_last_us", stats.LastPauseUs),
		slog.Uint64("gc_max_us", stats.MaxPauseUs),
		slog.Float64("sys_mb", stats.SysMB),
	}
	for _, name := range slices.Sorted(maps.Keys(stats.Counters)) {
		attrs = append(attrs, slog.Int(name, stats.Counters[name]))
	}
	common.Logger().Info("frame stats", attrs...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}
