// Package gesture classifies hand landmark sets into discrete gestures.
package gesture

import (
	"math"

	"github.com/pthm-cable/oracle/components"
)

// Landmark indices of the 21-point hand model.
const (
	Wrist     = 0
	ThumbTip  = 4
	IndexMCP  = 5
	IndexTip  = 8
	MiddleMCP = 9
	MiddleTip = 12
	RingMCP   = 13
	RingTip   = 16
	PinkyMCP  = 17
	PinkyTip  = 20

	NumLandmarks = 21
)

// DefaultCurlMultiplier scales the palm reference length; a fingertip closer
// to the wrist than reference*multiplier counts as curled.
const DefaultCurlMultiplier = 1.4

// trackedTips are the fingertips used for classification. The thumb is
// excluded as unreliable.
var trackedTips = [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

// Valid reports whether a landmark set can be classified: exactly 21 finite
// points with a non-degenerate palm reference.
func Valid(landmarks []components.Landmark) bool {
	if len(landmarks) != NumLandmarks {
		return false
	}
	for _, lm := range landmarks {
		if !finite(lm.X) || !finite(lm.Y) || !finite(lm.Z) {
			return false
		}
	}
	return dist(landmarks[Wrist], landmarks[MiddleMCP]) > 0
}

// CurledCount returns how many tracked fingers are curled. The reference
// length is the wrist to middle knuckle distance, so the result does not
// depend on how far the hand is from the camera.
func CurledCount(landmarks []components.Landmark, multiplier float64) int {
	wrist := landmarks[Wrist]
	limit := dist(wrist, landmarks[MiddleMCP]) * multiplier

	curled := 0
	for _, tip := range trackedTips {
		if dist(wrist, landmarks[tip]) < limit {
			curled++
		}
	}
	return curled
}

// Classify maps a valid landmark set to a gesture. Callers must check Valid
// first; Sample does that for them.
func Classify(landmarks []components.Landmark, multiplier float64) components.Gesture {
	switch curled := CurledCount(landmarks, multiplier); {
	case curled >= 3:
		return components.GestureClosedFist
	case curled <= 1:
		return components.GestureOpenHand
	default:
		return components.GestureUnknown
	}
}

// Sample converts one detector output into a hand sample. Missing or
// malformed landmark sets yield components.NoHand.
func Sample(landmarks []components.Landmark, multiplier float64) components.HandSample {
	if !Valid(landmarks) {
		return components.NoHand
	}
	// Middle knuckle is the most stable centre point; mirror X for a selfie view.
	centre := landmarks[MiddleMCP]
	return components.HandSample{
		X:        1 - centre.X,
		Y:        centre.Y,
		Detected: true,
		Gesture:  Classify(landmarks, multiplier),
	}
}

func dist(a, b components.Landmark) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
