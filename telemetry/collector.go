package telemetry

import (
	"math"

	"github.com/pthm-cable/oracle/field"
)

// Collector accumulates per-frame samples within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec    float64
	windowDurationFrames uint64
	dt                   float64

	// Current window tracking
	windowStartFrame uint64

	// Per-frame samples for current window
	charges    []float64
	handFrames int
	frames     int

	// Event counters for current window
	explosions int
	consults   int
	fallbacks  int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	framesPerWindow := uint64(windowDurationSec / dt)
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}

	return &Collector{
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: framesPerWindow,
		dt:                   dt,
		charges:              make([]float64, 0, framesPerWindow),
	}
}

// RecordFrame records one frame's charge and whether a hand was tracked.
func (c *Collector) RecordFrame(charge float64, handDetected bool) {
	c.charges = append(c.charges, charge)
	c.frames++
	if handDetected {
		c.handFrames++
	}
}

// RecordExplosion records an explode event.
func (c *Collector) RecordExplosion() {
	c.explosions++
}

// RecordConsult records a finished oracle consult.
func (c *Collector) RecordConsult(fallback bool) {
	c.consults++
	if fallback {
		c.fallbacks++
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame uint64) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// FrameState is the state sampled at window end.
type FrameState struct {
	Mode   string
	Shape  string
	Camera string
	Field  field.Stats
	Speeds []float64 // per-particle speed
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentFrame uint64, state FrameState) WindowStats {
	charge := Summarize(c.charges)
	speed := Summarize(state.Speeds)

	var coverage float64
	if c.frames > 0 {
		coverage = float64(c.handFrames) / float64(c.frames)
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       float64(currentFrame) * c.dt,

		Mode:   state.Mode,
		Shape:  state.Shape,
		Camera: state.Camera,

		ChargeMean: charge.Mean,
		ChargeMax:  charge.Max,
		ChargeP90:  charge.P90,

		Explosions: c.explosions,
		Consults:   c.consults,
		Fallbacks:  c.fallbacks,

		HandCoverage: coverage,

		SpeedMean:      speed.Mean,
		SpeedStd:       speed.Std,
		SpeedP50:       speed.P50,
		SpeedP90:       speed.P90,
		MeanTargetDist: state.Field.MeanTargetDist,
		MeanHomeDist:   state.Field.MeanHomeDist,
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.charges = c.charges[:0]
	c.frames = 0
	c.handFrames = 0
	c.explosions = 0
	c.consults = 0
	c.fallbacks = 0

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() uint64 {
	return c.windowDurationFrames
}

// Speeds returns the per-particle speed of a velocity buffer, reusing dst.
func Speeds(dst []float64, vel []float32) []float64 {
	n := len(vel) / 3
	dst = dst[:0]
	for i := 0; i < n; i++ {
		x, y, z := vel[i*3], vel[i*3+1], vel[i*3+2]
		dst = append(dst, math.Sqrt(float64(x*x+y*y+z*z)))
	}
	return dst
}
