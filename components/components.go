// Package components defines the value types shared between the simulation,
// the hand tracking pipeline and the render surfaces, plus the ECS components
// used by the effect systems.
package components

import "strings"

// Mode selects which simulation branch the particle field runs.
type Mode uint8

const (
	ModeFuture Mode = iota // morph toward the oracle's shape
	ModePast               // morph toward the oracle's shape
	ModeEvoca              // hand-driven force integration
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeFuture, ModePast, ModeEvoca}

// String returns the canonical upper-case name.
func (m Mode) String() string {
	switch m {
	case ModeFuture:
		return "FUTURE"
	case ModePast:
		return "PAST"
	case ModeEvoca:
		return "EVOCA"
	default:
		return "UNKNOWN"
	}
}

// Morphing reports whether the mode interpolates toward a target shape.
func (m Mode) Morphing() bool {
	return m == ModeFuture || m == ModePast
}

// ParseMode maps a name to a mode. Unknown names return false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FUTURE":
		return ModeFuture, true
	case "PAST":
		return ModePast, true
	case "EVOCA":
		return ModeEvoca, true
	}
	return ModeFuture, false
}

// Gesture is a discrete hand pose label.
type Gesture uint8

const (
	GestureUnknown Gesture = iota
	GestureOpenHand
	GestureClosedFist
	// GesturePointing is reserved; the classifier never produces it.
	GesturePointing
)

// String returns the canonical upper-case name.
func (g Gesture) String() string {
	switch g {
	case GestureOpenHand:
		return "OPEN_HAND"
	case GestureClosedFist:
		return "CLOSED_FIST"
	case GesturePointing:
		return "POINTING"
	default:
		return "UNKNOWN"
	}
}

// Landmark is one normalized hand keypoint. X and Y are in [0, 1] image
// space, Z is relative depth.
type Landmark struct {
	X, Y, Z float64
}

// HandSample is one detector output for the current camera frame.
type HandSample struct {
	X, Y     float64 // normalized, X already mirrored
	Detected bool
	Gesture  Gesture
}

// NoHand is the default sample returned whenever nothing was detected.
var NoHand = HandSample{X: 0.5, Y: 0.5, Detected: false, Gesture: GestureUnknown}
