// Package audio plays a hum that rises with the charge and a noise burst on
// every explosion.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/oracle/config"
)

// Engine mixes the hum and bursts. A nil *Engine is valid and silent.
type Engine struct {
	rate   beep.SampleRate
	burst  time.Duration
	volume float64
	logger *slog.Logger

	mu      sync.Mutex
	mixer   *beep.Mixer
	hum     *hum
	started bool
}

// New builds an engine from the audio config. It returns nil when audio is
// disabled. The speaker is not opened until Start.
func New(cfg config.AudioConfig, logger *slog.Logger) *Engine {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	rate := beep.SampleRate(cfg.SampleRate)
	if rate <= 0 {
		rate = 44100
	}
	e := &Engine{
		rate:   rate,
		burst:  time.Duration(cfg.BurstMillis) * time.Millisecond,
		volume: cfg.MasterVolume,
		logger: logger,
		mixer:  &beep.Mixer{},
		hum:    newHum(rate, cfg.HumBaseFreq, cfg.HumMaxFreq),
	}
	e.mixer.Add(e.hum)
	return e
}

// Start opens the speaker and begins playback.
func (e *Engine) Start() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}
	if err := speaker.Init(e.rate, e.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(newVolume(e, e.volume))
	e.started = true
	e.logger.Info("audio started", "sample_rate", int(e.rate))
	return nil
}

// Close silences the engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		speaker.Clear()
	}
	e.mixer.Clear()
	e.started = false
}

// SetCharge sets the hum's pitch and loudness from a charge in [0, 1].
func (e *Engine) SetCharge(charge float64) {
	if e == nil {
		return
	}
	e.hum.set(charge)
}

// Explode queues one noise burst.
func (e *Engine) Explode() {
	if e == nil {
		return
	}
	burst := NewBurst(e.burst, e.rate)
	e.mu.Lock()
	e.mixer.Add(burst)
	e.mu.Unlock()
}

// Stream implements beep.Streamer over the mixer.
func (e *Engine) Stream(samples [][2]float64) (n int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mixer.Stream(samples)
}

// Err implements beep.Streamer.
func (e *Engine) Err() error { return nil }

// hum is an endless sine whose frequency and gain glide toward targets set
// from another goroutine.
type hum struct {
	rate       beep.SampleRate
	base, span float64

	mu     sync.Mutex
	target float64 // charge in [0, 1]

	level float64
	phase float64
}

func newHum(rate beep.SampleRate, base, max float64) *hum {
	return &hum{rate: rate, base: base, span: max - base}
}

func (h *hum) set(charge float64) {
	h.mu.Lock()
	h.target = min(max(charge, 0), 1)
	h.mu.Unlock()
}

func (h *hum) Stream(samples [][2]float64) (n int, ok bool) {
	h.mu.Lock()
	target := h.target
	h.mu.Unlock()

	// Glide over roughly 50ms
	glide := 1 / (0.05 * float64(h.rate))
	for i := range samples {
		h.level += (target - h.level) * glide
		freq := h.base + h.span*h.level
		val := math.Sin(2*math.Pi*h.phase) * h.level * 0.5

		samples[i][0] = val
		samples[i][1] = val

		h.phase += freq / float64(h.rate)
		h.phase -= math.Floor(h.phase)
	}
	return len(samples), true
}

func (h *hum) Err() error { return nil }

// burst is white noise with a linear decay.
type burst struct {
	total    int
	position int
}

// NewBurst returns a decaying noise streamer of the given length.
func NewBurst(d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &burst{total: rate.N(d)}
}

func (b *burst) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.position >= b.total {
			return i, i > 0
		}
		decay := 1 - float64(b.position)/float64(b.total)
		val := (rand.Float64()*2 - 1) * decay * decay
		samples[i][0] = val
		samples[i][1] = val
		b.position++
	}
	return len(samples), true
}

func (b *burst) Err() error { return nil }

// newVolume scales s by a linear gain; zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
