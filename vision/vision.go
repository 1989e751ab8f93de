// Package vision turns camera frames into hand samples. The landmark
// detector itself sits behind the Detector interface; Tracker owns its
// readiness and skips frames it has already seen.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/gesture"
)

// ErrNotInitialized is returned by detectors used before Init succeeded.
var ErrNotInitialized = errors.New("vision: detector not initialized")

// Frame is one captured video frame. Devices that track the hand
// themselves fill Landmarks directly; nil means no hand in view.
type Frame struct {
	Seq       uint64
	Time      time.Duration // capture time since the device opened
	Width     int
	Height    int
	Landmarks []components.Landmark
}

// Detector finds a single hand's 21 normalized landmarks in a frame.
type Detector interface {
	Init(ctx context.Context) error
	Detect(frame Frame) ([]components.Landmark, error)
}

// Tracker wraps a Detector with idempotent initialization and frame
// deduplication.
type Tracker struct {
	detector   Detector
	multiplier float64
	logger     *slog.Logger

	initMu sync.Mutex
	ready  bool

	mu       sync.Mutex
	lastSeq  uint64
	haveLast bool
}

// NewTracker creates a tracker around d. multiplier is the gesture curl
// multiplier; zero selects gesture.DefaultCurlMultiplier.
func NewTracker(d Detector, multiplier float64, logger *slog.Logger) *Tracker {
	if multiplier <= 0 {
		multiplier = gesture.DefaultCurlMultiplier
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{detector: d, multiplier: multiplier, logger: logger}
}

// Initialize prepares the detector. After the first success further calls
// return nil immediately; a failed attempt may be retried.
func (t *Tracker) Initialize(ctx context.Context) error {
	t.initMu.Lock()
	defer t.initMu.Unlock()

	if t.ready {
		return nil
	}
	start := time.Now()
	if err := t.detector.Init(ctx); err != nil {
		return fmt.Errorf("initializing hand detector: %w", err)
	}
	t.ready = true
	t.logger.Info("hand detector ready", "elapsed", time.Since(start))
	return nil
}

// Ready reports whether Initialize has succeeded.
func (t *Tracker) Ready() bool {
	t.initMu.Lock()
	defer t.initMu.Unlock()
	return t.ready
}

// Detect classifies one frame. fresh is false when the frame was already
// processed; the detector is not called again and the not-detected sample
// is returned. Detector errors and malformed output also yield NoHand.
func (t *Tracker) Detect(frame Frame) (sample components.HandSample, fresh bool) {
	t.mu.Lock()
	if t.haveLast && frame.Seq == t.lastSeq {
		t.mu.Unlock()
		return components.NoHand, false
	}
	t.lastSeq = frame.Seq
	t.haveLast = true
	t.mu.Unlock()

	landmarks, err := t.detector.Detect(frame)
	if err != nil {
		t.logger.Debug("hand detection failed", "seq", frame.Seq, "error", err)
		return components.NoHand, true
	}
	return gesture.Sample(landmarks, t.multiplier), true
}

// Reset forgets the last processed frame, for a new capture session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.haveLast = false
	t.lastSeq = 0
	t.mu.Unlock()
}

// FrameDetector reads landmarks already attached to the frame.
type FrameDetector struct {
	mu    sync.Mutex
	ready bool
}

// Init marks the detector ready.
func (d *FrameDetector) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.ready = true
	d.mu.Unlock()
	return nil
}

// Detect returns the frame's landmarks.
func (d *FrameDetector) Detect(frame Frame) ([]components.Landmark, error) {
	d.mu.Lock()
	ready := d.ready
	d.mu.Unlock()
	if !ready {
		return nil, ErrNotInitialized
	}
	return frame.Landmarks, nil
}
