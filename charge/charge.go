// Package charge folds a stream of hand samples into a charge level and a
// one-shot explode event.
package charge

import (
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
)

// Variant selects the trigger rule.
type Variant uint8

const (
	// Gated requires a minimum charge before an open hand releases it.
	Gated Variant = iota
	// Classic explodes on any fist to open-hand transition.
	Classic
)

// Params holds the charge rates.
type Params struct {
	Variant          Variant
	Increment        float64 // per fist sample
	OpenDecrement    float64 // open hand below threshold
	UnknownDecrement float64 // unknown or pointing
	Threshold        float64 // minimum charge for an explosion
}

// DefaultParams returns the canonical gated rates.
func DefaultParams() Params {
	return Params{
		Variant:          Gated,
		Increment:        0.03,
		OpenDecrement:    0.05,
		UnknownDecrement: 0.01,
		Threshold:        0.15,
	}
}

// ParamsFromConfig builds Params from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	p := Params{
		Variant:          Gated,
		Increment:        cfg.Charge.Increment,
		OpenDecrement:    cfg.Charge.OpenDecrement,
		UnknownDecrement: cfg.Charge.UnknownDecrement,
		Threshold:        cfg.Charge.Threshold,
	}
	if cfg.Derived.ClassicMode {
		p.Variant = Classic
	}
	return p
}

// Event is the outcome of one step.
type Event struct {
	Charge   float64
	Explode  bool
	Released float64 // charge that was let go, set only when Explode
}

// Machine tracks charge across hand samples. The zero value is not usable;
// call New.
type Machine struct {
	params   Params
	charge   float64
	exploded bool
	released float64
	prev     components.Gesture
}

// New creates a machine at zero charge.
func New(params Params) *Machine {
	return &Machine{params: params}
}

// Step folds one fresh hand sample into the state. Callers must not feed the
// same sample twice; Explode is true on exactly the step that released the
// charge.
func (m *Machine) Step(hand components.HandSample) Event {
	m.exploded = false

	if !hand.Detected {
		m.charge = 0
		m.prev = components.GestureUnknown
		return m.event()
	}

	if m.params.Variant == Classic {
		m.stepClassic(hand.Gesture)
	} else {
		m.stepGated(hand.Gesture)
	}
	m.prev = hand.Gesture
	return m.event()
}

func (m *Machine) stepGated(g components.Gesture) {
	switch g {
	case components.GestureClosedFist:
		m.charge = min(m.charge+m.params.Increment, 1)
	case components.GestureOpenHand:
		if m.charge >= m.params.Threshold {
			m.exploded = true
			m.released = m.charge
			m.charge = 0
			return
		}
		m.charge = max(m.charge-m.params.OpenDecrement, 0)
	default:
		m.charge = max(m.charge-m.params.UnknownDecrement, 0)
	}
}

// stepClassic holds full charge while the fist is closed and releases on the
// next open hand.
func (m *Machine) stepClassic(g components.Gesture) {
	switch g {
	case components.GestureClosedFist:
		m.charge = 1
	case components.GestureOpenHand:
		if m.prev == components.GestureClosedFist {
			m.exploded = true
			m.released = m.charge
		}
		m.charge = 0
	default:
		m.charge = 0
	}
}

func (m *Machine) event() Event {
	e := Event{Charge: m.charge, Explode: m.exploded}
	if m.exploded {
		e.Released = m.released
	}
	return e
}

// Charge returns the current charge in [0, 1].
func (m *Machine) Charge() float64 { return m.charge }

// Exploded reports whether the most recent step fired an explosion.
func (m *Machine) Exploded() bool { return m.exploded }

// Reset clears charge and any pending event. Called on mode entry and exit.
func (m *Machine) Reset() {
	m.charge = 0
	m.exploded = false
	m.prev = components.GestureUnknown
}
