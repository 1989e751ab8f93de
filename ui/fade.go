package ui

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Easer animates a displayed value toward a moving target. Each new target
// restarts the tween from the value currently shown.
type Easer struct {
	duration float32
	fn       ease.TweenFunc

	tween  *gween.Tween
	target float32
	value  float32
}

// NewEaser creates an easer resting at from.
func NewEaser(from, duration float32, fn ease.TweenFunc) *Easer {
	return &Easer{duration: duration, fn: fn, target: from, value: from}
}

// Set retargets the easer. Targets within 1e-3 of the current one are
// ignored so a steady input does not restart the curve every frame.
func (e *Easer) Set(target float32) {
	if d := target - e.target; d > -1e-3 && d < 1e-3 {
		return
	}
	e.target = target
	e.tween = gween.New(e.value, target, e.duration, e.fn)
}

// Jump moves to target without animating.
func (e *Easer) Jump(target float32) {
	e.target, e.value, e.tween = target, target, nil
}

// Update advances by dt seconds and returns the displayed value.
func (e *Easer) Update(dt float32) float32 {
	if e.tween == nil {
		return e.value
	}
	val, finished := e.tween.Update(dt)
	e.value = val
	if finished {
		e.value = e.target
		e.tween = nil
	}
	return e.value
}

// Value returns the displayed value without advancing.
func (e *Easer) Value() float32 { return e.value }
