// Package profiler tracks frame rate, draw volume and memory statistics for
// performance monitoring.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/prism-go/internal/logger"
	"go.uber.org/zap"
)

// Profiler aggregates per-frame samples and reports them through the logger
// at a fixed interval.
type Profiler struct {
	frameCount     int
	drawn          int
	skipped        int
	failed         int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler reporting once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Observe adds one frame's draw outcome to the interval totals.
//
// Parameters:
//   - drawn: draws recorded this frame
//   - skipped: draws skipped waiting on assets
//   - failed: draws that hit an invariant failure
func (p *Profiler) Observe(drawn, skipped, failed int) {
	p.drawn += drawn
	p.skipped += skipped
	p.failed += failed
}

// Tick should be called once per frame. When the update interval has elapsed
// it logs FPS, draw totals, heap usage, allocation rate and GC pauses, then
// resets the interval counters.
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	logger.Info("frame stats",
		zap.Float64("fps", fps),
		zap.Int("drawn", p.drawn),
		zap.Int("skipped", p.skipped),
		zap.Int("failed", p.failed),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_mb_per_sec", allocRateMB),
		zap.Uint32("gc_count", gcCount),
		zap.Uint64("gc_last_pause_us", lastPauseUs),
		zap.Uint64("gc_max_pause_us", maxPauseUs),
		zap.Float64("sys_mb", sysMB),
	)

	p.frameCount = 0
	p.drawn = 0
	p.skipped = 0
	p.failed = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
