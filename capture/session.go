package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/vision"
)

// Status is the camera state shown to the user.
type Status int32

const (
	StatusIdle Status = iota
	StatusLoading
	StatusActive
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusActive:
		return "active"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Sample is the newest hand sample with the sequence number it was
// published under. Seq only changes when a fresh frame was processed.
type Sample struct {
	Hand components.HandSample
	Seq  uint64
	At   time.Time
}

// Session runs the detection loop for one device.
type Session struct {
	device  Device
	tracker *vision.Tracker
	fps     float64
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	status  atomic.Int32
	lastErr atomic.Pointer[error]
	latest  atomic.Pointer[Sample]
	seq     atomic.Uint64
}

// NewSession creates an idle session. fps bounds how often frames are read.
func NewSession(device Device, tracker *vision.Tracker, fps float64, logger *slog.Logger) *Session {
	if fps <= 0 {
		fps = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{device: device, tracker: tracker, fps: fps, logger: logger}
	s.latest.Store(&Sample{Hand: components.NoHand})
	return s
}

// Start begins acquisition in the background and returns immediately.
// While an acquisition is outstanding it returns ErrAlreadyActive.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
			// Previous loop ended on its own; reap it.
			s.cancel()
			s.cancel, s.done = nil, nil
		default:
			return ErrAlreadyActive
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.lastErr.Store(nil)
	s.setStatus(StatusLoading)
	s.tracker.Reset()

	go s.run(ctx, done)
	return nil
}

// Stop cancels the loop and waits until the device has been released.
// Stopping an idle session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.publish(components.NoHand)
	s.setStatus(StatusIdle)
}

// Latest returns the newest published sample without blocking.
func (s *Session) Latest() Sample {
	return *s.latest.Load()
}

// Status returns the current camera status.
func (s *Session) Status() Status {
	return Status(s.status.Load())
}

// Err returns the error that put the session into StatusError, if any.
func (s *Session) Err() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if err := s.tracker.Initialize(ctx); err != nil {
		s.fail(ctx, err)
		return
	}
	if err := s.device.Open(ctx); err != nil {
		s.fail(ctx, err)
		return
	}
	defer func() {
		if err := s.device.Close(); err != nil {
			s.logger.Warn("closing capture device", "error", err)
		}
	}()

	s.setStatus(StatusActive)
	s.logger.Info("camera active", "fps", s.fps)

	limiter := rate.NewLimiter(rate.Limit(s.fps), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		frame, err := s.device.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("capture source exhausted")
				s.publish(components.NoHand)
				s.setStatus(StatusIdle)
				return
			}
			s.fail(ctx, err)
			return
		}

		hand, fresh := s.tracker.Detect(frame)
		if fresh {
			s.publish(hand)
		}
	}
}

// fail records err unless the loop is simply being cancelled.
func (s *Session) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Error("camera failed", "error", err)
	s.lastErr.Store(&err)
	s.publish(components.NoHand)
	s.setStatus(StatusError)
}

func (s *Session) publish(hand components.HandSample) {
	s.latest.Store(&Sample{Hand: hand, Seq: s.seq.Add(1), At: time.Now()})
}

func (s *Session) setStatus(st Status) {
	s.status.Store(int32(st))
}
