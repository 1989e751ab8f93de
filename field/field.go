// Package field owns the particle buffers and advances them one frame at a
// time, either morphing toward a target shape or integrating hand-driven
// forces.
package field

import (
	"math/rand"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/shape"
)

// FrameInput is everything one step needs from the frame driver.
type FrameInput struct {
	Mode    components.Mode
	Shape   shape.ID
	Hand    components.HandSample
	Charge  float64
	Explode bool
	Time    float64 // seconds since start
}

// Dirty describes which buffers a step rewrote.
type Dirty struct {
	Frame     uint64
	Positions bool
	Colors    bool
	Retarget  bool // target buffer was regenerated this step
}

// BufferListener is notified after every step that touched the buffers.
type BufferListener interface {
	BuffersChanged(d Dirty)
}

// ListenerFunc adapts a function to BufferListener.
type ListenerFunc func(d Dirty)

// BuffersChanged calls f(d).
func (f ListenerFunc) BuffersChanged(d Dirty) { f(d) }

// Field holds N particles in flat xyz buffers. Index i always refers to the
// same particle; buffers are allocated once in New.
type Field struct {
	params Params
	rng    *rand.Rand
	count  int

	pos    []float32
	vel    []float32
	col    []float32
	home   []float32
	target []float32

	shape    shape.ID
	resample bool    // Retarget ran since the last Step
	rotation float32 // accumulated Y rotation in radians
	frame    uint64

	explosions uint64
	lastCharge float64

	listeners []BufferListener
}

// New scatters count particles through the RANDOM volume and anchors each
// one at its starting position.
func New(params Params, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	n := max(params.Count, 0)

	f := &Field{
		params: params,
		rng:    rng,
		count:  n,
		vel:    make([]float32, n*3),
		col:    make([]float32, n*3),
		shape:  shape.Random,
	}
	f.pos = shape.GenerateSized(shape.Random, n, params.SpaceSize, rng)
	f.home = make([]float32, len(f.pos))
	copy(f.home, f.pos)
	f.target = shape.GenerateSized(shape.Random, n, params.SpaceSize, rng)

	for i := range f.col {
		f.col[i] = 1
	}
	return f
}

// AddListener registers l for dirty notifications.
func (f *Field) AddListener(l BufferListener) {
	f.listeners = append(f.listeners, l)
}

// Step advances the field by one frame.
func (f *Field) Step(in FrameInput) {
	retarget := f.resample
	f.resample = false
	if in.Shape != f.shape {
		f.setTarget(in.Shape)
		retarget = true
	}

	switch in.Mode {
	case components.ModeFuture, components.ModePast:
		f.morph(in.Time)
		f.rotation += f.params.RotationSpeed
	case components.ModeEvoca:
		f.physics(in)
	default:
		return
	}

	f.frame++
	f.lastCharge = in.Charge
	if in.Explode {
		f.explosions++
	}

	d := Dirty{Frame: f.frame, Positions: true, Colors: true, Retarget: retarget}
	for _, l := range f.listeners {
		l.BuffersChanged(d)
	}
}

// Retarget regenerates the target buffer for id even if it is already the
// current shape. The next Step reports it as a retarget.
func (f *Field) Retarget(id shape.ID) {
	f.setTarget(id)
	f.resample = true
}

func (f *Field) setTarget(id shape.ID) {
	f.target = shape.GenerateSized(id, f.count, f.params.SpaceSize, f.rng)
	f.shape = id
}

// Count returns the number of particles.
func (f *Field) Count() int { return f.count }

// Positions returns the live position buffer. Callers must not modify it.
func (f *Field) Positions() []float32 { return f.pos }

// Colors returns the live colour buffer. Callers must not modify it.
func (f *Field) Colors() []float32 { return f.col }

// Velocities returns the live velocity buffer. Callers must not modify it.
func (f *Field) Velocities() []float32 { return f.vel }

// Homes returns the idle anchors.
func (f *Field) Homes() []float32 { return f.home }

// Target returns the current target shape buffer.
func (f *Field) Target() []float32 { return f.target }

// Shape returns the shape the target buffer was generated from.
func (f *Field) Shape() shape.ID { return f.shape }

// Rotation returns the accumulated Y rotation applied when drawing.
func (f *Field) Rotation() float32 { return f.rotation }

// Frame returns the number of steps taken.
func (f *Field) Frame() uint64 { return f.frame }

// Params returns the field parameters.
func (f *Field) Params() Params { return f.params }
