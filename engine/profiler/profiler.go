package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
)

// Profiler tracks frame rate, render graph size and memory statistics for performance monitoring.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	frameCount     int
	passCount      int
	textureCount   int
	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Sample
}

// Sample is the statistics logged for one interval.
type Sample struct {
	// FPS is the frame rate over the interval.
	FPS float64
	// AvgPasses is the mean number of graph passes recorded per frame.
	AvgPasses float64
	// AvgTextures is the mean number of transient textures allocated per frame.
	AvgTextures float64
	// HeapMB is the live heap in megabytes.
	HeapMB float64
	// AllocRateMB is the heap allocation rate in megabytes per second.
	AllocRateMB float64
	// GCCount is the cumulative number of completed GC cycles.
	GCCount uint32
}

// ProfilerBuilderOption is a functional option used to configure a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often statistics are logged.
//
// Parameters:
//   - d: the logging interval
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the interval
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithClock replaces the time source.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the clock
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options applied to the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the size of the frame's render graph.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - passes: the number of passes recorded this frame
//   - textures: the number of transient textures allocated this frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(passes, textures int) bool {
	p.frameCount++
	p.passCount += passes
	p.textureCount += textures

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	s := Sample{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		AvgPasses:   float64(p.passCount) / float64(p.frameCount),
		AvgTextures: float64(p.textureCount) / float64(p.frameCount),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if s.GCCount-startIdx > 256 {
		startIdx = s.GCCount - 256
	}
	for i := startIdx; i < s.GCCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	common.Logger().Info("profiler",
		"fps", s.FPS,
		"avg_passes", s.AvgPasses,
		"avg_textures", s.AvgTextures,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb_s", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_max_pause_us", maxPauseUs,
	)

	p.last = s
	p.frameCount = 0
	p.passCount = 0
	p.textureCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged sample.
//
// Returns:
//   - Sample: the last sample, zero before the first interval elapses
func (p *Profiler) Last() Sample {
	return p.last
}
