package gesture

import (
	"math"
	"testing"

	"github.com/pthm-cable/oracle/components"
)

func TestClassifySynthetic(t *testing.T) {
	tests := []struct {
		name   string
		curled [4]bool
		want   components.Gesture
	}{
		{"all extended", [4]bool{}, components.GestureOpenHand},
		{"one curled", [4]bool{false, false, false, true}, components.GestureOpenHand},
		{"two curled", [4]bool{false, false, true, true}, components.GestureUnknown},
		{"three curled", [4]bool{false, true, true, true}, components.GestureClosedFist},
		{"all curled", [4]bool{true, true, true, true}, components.GestureClosedFist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lm := Synthesize(0.5, 0.5, 0.1, tt.curled)
			if got := Classify(lm, DefaultCurlMultiplier); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyScaleInvariant(t *testing.T) {
	// Same pose close to and far from the camera
	for _, size := range []float64{0.02, 0.08, 0.3} {
		if got := Classify(Fist(0.4, 0.6, size), DefaultCurlMultiplier); got != components.GestureClosedFist {
			t.Errorf("size %v: fist classified as %v", size, got)
		}
		if got := Classify(OpenHand(0.4, 0.6, size), DefaultCurlMultiplier); got != components.GestureOpenHand {
			t.Errorf("size %v: open hand classified as %v", size, got)
		}
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	// Hand-built set: wrist at origin, middle knuckle at distance 1.
	lm := make([]components.Landmark, NumLandmarks)
	lm[MiddleMCP] = components.Landmark{Y: -1}
	place := func(d float64) {
		for _, tip := range trackedTips {
			lm[tip] = components.Landmark{Y: -d}
		}
	}

	place(1.39)
	if got := Classify(lm, 1.4); got != components.GestureClosedFist {
		t.Errorf("tips at 1.39x: got %v, want CLOSED_FIST", got)
	}
	place(1.41)
	if got := Classify(lm, 1.4); got != components.GestureOpenHand {
		t.Errorf("tips at 1.41x: got %v, want OPEN_HAND", got)
	}
}

func TestClassifyNeverPointing(t *testing.T) {
	// Index extended, others curled: the classic pointing pose
	lm := Synthesize(0.5, 0.5, 0.1, [4]bool{false, true, true, true})
	if got := Classify(lm, DefaultCurlMultiplier); got == components.GesturePointing {
		t.Error("classifier must not produce POINTING")
	}
}

func TestValid(t *testing.T) {
	good := OpenHand(0.5, 0.5, 0.1)
	if !Valid(good) {
		t.Fatal("synthetic hand should be valid")
	}

	short := good[:20]
	if Valid(short) {
		t.Error("20 landmarks should be invalid")
	}
	if Valid(nil) {
		t.Error("nil landmarks should be invalid")
	}

	nan := append([]components.Landmark(nil), good...)
	nan[7].X = math.NaN()
	if Valid(nan) {
		t.Error("NaN landmark should be invalid")
	}

	degenerate := make([]components.Landmark, NumLandmarks)
	if Valid(degenerate) {
		t.Error("zero palm reference should be invalid")
	}
}

func TestSample(t *testing.T) {
	s := Sample(Fist(0.3, 0.4, 0.1), DefaultCurlMultiplier)
	if !s.Detected {
		t.Fatal("expected detected sample")
	}
	if math.Abs(s.X-0.7) > 1e-9 || math.Abs(s.Y-0.4) > 1e-9 {
		t.Errorf("sample position = (%v, %v), want mirrored (0.7, 0.4)", s.X, s.Y)
	}
	if s.Gesture != components.GestureClosedFist {
		t.Errorf("gesture = %v, want CLOSED_FIST", s.Gesture)
	}

	if got := Sample(nil, DefaultCurlMultiplier); got != components.NoHand {
		t.Errorf("Sample(nil) = %+v, want NoHand", got)
	}
}
