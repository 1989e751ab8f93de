// Package capture owns the camera acquisition: one device at a time, a
// paced detection loop off the frame thread, and the newest hand sample
// published for the frame loop to read without waiting.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pthm-cable/oracle/gesture"
	"github.com/pthm-cable/oracle/vision"
)

var (
	// ErrAlreadyActive is returned when a second acquisition is attempted.
	ErrAlreadyActive = errors.New("capture: camera already active")
	// ErrDeviceClosed is returned by reads on a device that is not open.
	ErrDeviceClosed = errors.New("capture: device closed")
)

// Device is a frame source that must be released after use.
type Device interface {
	Open(ctx context.Context) error
	ReadFrame(ctx context.Context) (vision.Frame, error)
	Close() error
}

// PointerDevice turns a pointer position into a synthetic hand. The frame
// loop feeds it with Update; the capture loop reads it.
type PointerDevice struct {
	HandSize float64 // palm length in normalized image units

	mu      sync.Mutex
	open    bool
	seq     uint64
	started time.Time
	x, y    float64
	fist    bool
	inView  bool
	opens   int
}

// NewPointerDevice creates a pointer device with no hand in view.
func NewPointerDevice() *PointerDevice {
	return &PointerDevice{HandSize: 0.1}
}

// Update sets the pointer in normalized screen coordinates. pressed closes
// the hand; inView false removes it from the frame.
func (d *PointerDevice) Update(x, y float64, pressed, inView bool) {
	d.mu.Lock()
	d.x, d.y, d.fist, d.inView = x, y, pressed, inView
	d.mu.Unlock()
}

// Open acquires the device.
func (d *PointerDevice) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return ErrAlreadyActive
	}
	d.open = true
	d.opens++
	d.started = time.Now()
	return nil
}

// ReadFrame captures the current pointer state as a frame.
func (d *PointerDevice) ReadFrame(ctx context.Context) (vision.Frame, error) {
	if err := ctx.Err(); err != nil {
		return vision.Frame{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return vision.Frame{}, ErrDeviceClosed
	}

	d.seq++
	fr := vision.Frame{Seq: d.seq, Time: time.Since(d.started)}
	if d.inView {
		// The camera image is mirrored relative to the screen.
		cx := 1 - d.x
		if d.fist {
			fr.Landmarks = gesture.Fist(cx, d.y, d.HandSize)
		} else {
			fr.Landmarks = gesture.OpenHand(cx, d.y, d.HandSize)
		}
	}
	return fr, nil
}

// Close releases the device. Closing twice is harmless.
func (d *PointerDevice) Close() error {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
	return nil
}

// IsOpen reports whether the device is currently acquired.
func (d *PointerDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// ReplayDevice plays back a landmark recording. Sequence numbers keep
// increasing across loops so every replayed frame is fresh.
type ReplayDevice struct {
	path string
	loop bool

	mu     sync.Mutex
	frames []vision.Frame
	pos    int
	seq    uint64
	open   bool
}

// NewReplayDevice replays the CSV recording at path, loaded on Open.
func NewReplayDevice(path string, loop bool) *ReplayDevice {
	return &ReplayDevice{path: path, loop: loop}
}

// NewReplayFrames replays frames already in memory.
func NewReplayFrames(frames []vision.Frame, loop bool) *ReplayDevice {
	return &ReplayDevice{frames: frames, loop: loop}
}

// Open loads the recording if needed and rewinds it.
func (d *ReplayDevice) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return ErrAlreadyActive
	}

	if d.path != "" && d.frames == nil {
		f, err := os.Open(d.path)
		if err != nil {
			return fmt.Errorf("opening replay: %w", err)
		}
		frames, err := vision.ReadRecording(f)
		f.Close()
		if err != nil {
			return err
		}
		d.frames = frames
	}
	if len(d.frames) == 0 {
		return fmt.Errorf("replay %q has no frames", d.path)
	}
	d.pos = 0
	d.open = true
	return nil
}

// ReadFrame returns the next recorded frame, or io.EOF at the end of a
// non-looping recording.
func (d *ReplayDevice) ReadFrame(ctx context.Context) (vision.Frame, error) {
	if err := ctx.Err(); err != nil {
		return vision.Frame{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return vision.Frame{}, ErrDeviceClosed
	}
	if d.pos >= len(d.frames) {
		if !d.loop {
			return vision.Frame{}, io.EOF
		}
		d.pos = 0
	}

	fr := d.frames[d.pos]
	d.pos++
	d.seq++
	fr.Seq = d.seq
	return fr, nil
}

// Close releases the device.
func (d *ReplayDevice) Close() error {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
	return nil
}

// RecordingDevice tees every frame read from the wrapped device into a CSV
// recording written on Close.
type RecordingDevice struct {
	Device
	path string

	mu     sync.Mutex
	frames []vision.Frame
}

// NewRecordingDevice wraps d, recording to path.
func NewRecordingDevice(d Device, path string) *RecordingDevice {
	return &RecordingDevice{Device: d, path: path}
}

// ReadFrame reads from the wrapped device and keeps a copy.
func (r *RecordingDevice) ReadFrame(ctx context.Context) (vision.Frame, error) {
	fr, err := r.Device.ReadFrame(ctx)
	if err == nil {
		r.mu.Lock()
		r.frames = append(r.frames, fr)
		r.mu.Unlock()
	}
	return fr, err
}

// Close releases the wrapped device, then writes the recording.
func (r *RecordingDevice) Close() error {
	closeErr := r.Device.Close()

	r.mu.Lock()
	frames := r.frames
	r.frames = nil
	r.mu.Unlock()
	if len(frames) == 0 {
		return closeErr
	}

	f, err := os.Create(r.path)
	if err != nil {
		return errors.Join(closeErr, fmt.Errorf("creating recording: %w", err))
	}
	defer f.Close()
	return errors.Join(closeErr, vision.WriteRecording(f, frames))
}
