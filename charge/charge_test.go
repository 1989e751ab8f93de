package charge

import (
	"math"
	"testing"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
)

func hand(g components.Gesture) components.HandSample {
	return components.HandSample{X: 0.5, Y: 0.5, Detected: true, Gesture: g}
}

var (
	fist    = hand(components.GestureClosedFist)
	open    = hand(components.GestureOpenHand)
	unknown = hand(components.GestureUnknown)
)

func TestFistChargesMonotonically(t *testing.T) {
	m := New(DefaultParams())
	prev := 0.0
	for i := 0; i < 40; i++ {
		ev := m.Step(fist)
		if ev.Charge < prev {
			t.Fatalf("step %d: charge decreased %v -> %v", i, prev, ev.Charge)
		}
		if ev.Charge > 1 {
			t.Fatalf("step %d: charge %v above 1", i, ev.Charge)
		}
		if ev.Explode {
			t.Fatalf("step %d: fist must not explode", i)
		}
		prev = ev.Charge
	}
	if prev != 1 {
		t.Errorf("charge after 40 fist steps = %v, want 1", prev)
	}
}

func TestOpenBelowThresholdNeverExplodes(t *testing.T) {
	m := New(DefaultParams())
	for i := 0; i < 4; i++ {
		m.Step(fist)
	}
	ev := m.Step(open)
	if ev.Explode {
		t.Fatal("open hand at charge 0.12 must not explode")
	}
	if ev.Charge < 0.069 || ev.Charge > 0.071 {
		t.Errorf("charge = %v, want 0.07 after false start", ev.Charge)
	}

	// Repeated open hands floor at zero
	for i := 0; i < 5; i++ {
		ev = m.Step(open)
	}
	if ev.Charge != 0 || ev.Explode {
		t.Errorf("after repeated open hands: %+v, want zero charge and no explosion", ev)
	}
}

func TestOpenAboveThresholdExplodesOnce(t *testing.T) {
	m := New(DefaultParams())
	for i := 0; i < 6; i++ {
		m.Step(fist)
	}
	ev := m.Step(open)
	if !ev.Explode {
		t.Fatal("open hand at charge 0.18 should explode")
	}
	if ev.Charge != 0 {
		t.Errorf("charge on explode step = %v, want 0", ev.Charge)
	}
	if math.Abs(ev.Released-0.18) > 1e-9 {
		t.Errorf("released = %v, want 0.18", ev.Released)
	}
	if !m.Exploded() {
		t.Error("Exploded() should report the event on the same step")
	}

	for _, next := range []components.HandSample{open, fist, unknown, components.NoHand} {
		m2 := New(DefaultParams())
		for i := 0; i < 6; i++ {
			m2.Step(fist)
		}
		m2.Step(open)
		if ev := m2.Step(next); ev.Explode {
			t.Errorf("next step with %v still exploding", next.Gesture)
		}
		if m2.Exploded() {
			t.Errorf("Exploded() true after follow-up %v", next.Gesture)
		}
	}
}

func TestNoHandResetsCharge(t *testing.T) {
	m := New(DefaultParams())
	for i := 0; i < 20; i++ {
		m.Step(fist)
	}
	if ev := m.Step(components.NoHand); ev.Charge != 0 {
		t.Errorf("charge after losing hand = %v, want 0", ev.Charge)
	}
}

func TestUnknownDecaysSlowly(t *testing.T) {
	m := New(DefaultParams())
	for i := 0; i < 10; i++ {
		m.Step(fist)
	}
	before := m.Charge()
	ev := m.Step(unknown)
	if d := before - ev.Charge; d < 0.0099 || d > 0.0101 {
		t.Errorf("unknown decrement = %v, want 0.01", d)
	}
	pointing := hand(components.GesturePointing)
	if ev := m.Step(pointing); ev.Charge >= before-0.01 {
		t.Errorf("pointing should decay like unknown, charge = %v", ev.Charge)
	}
}

func TestReset(t *testing.T) {
	m := New(DefaultParams())
	for i := 0; i < 10; i++ {
		m.Step(fist)
	}
	m.Step(open)
	m.Reset()
	if m.Charge() != 0 || m.Exploded() {
		t.Errorf("after Reset: charge=%v exploded=%v", m.Charge(), m.Exploded())
	}
}

func TestClassicVariant(t *testing.T) {
	p := DefaultParams()
	p.Variant = Classic
	m := New(p)

	if ev := m.Step(fist); ev.Charge != 1 {
		t.Errorf("classic fist charge = %v, want 1", ev.Charge)
	}
	if ev := m.Step(open); !ev.Explode {
		t.Error("classic fist -> open should explode regardless of charge")
	}
	if ev := m.Step(open); ev.Explode {
		t.Error("open -> open must not explode")
	}

	m.Step(fist)
	m.Step(unknown)
	if ev := m.Step(open); ev.Explode {
		t.Error("fist -> unknown -> open must not explode in classic mode")
	}
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	p := ParamsFromConfig(cfg)
	if p != DefaultParams() {
		t.Errorf("ParamsFromConfig(defaults) = %+v, want %+v", p, DefaultParams())
	}

	cfg.Derived.ClassicMode = true
	if ParamsFromConfig(cfg).Variant != Classic {
		t.Error("classic config should select the classic variant")
	}
}
