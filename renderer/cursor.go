package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/components"
)

// DrawHandCursor draws the tracked hand position in screen space. The ring
// fills with charge and turns red for a fist.
func DrawHandCursor(hand components.HandSample, charge float64, screenW, screenH float32) {
	if !hand.Detected {
		return
	}
	x := int32(float32(hand.X) * screenW)
	y := int32(float32(hand.Y) * screenH)

	color := rl.SkyBlue
	if hand.Gesture == components.GestureClosedFist {
		color = rl.Red
	}

	rl.DrawCircleLines(x, y, 18, rl.Fade(color, 0.8))
	if charge > 0 {
		rl.DrawCircle(x, y, float32(18*charge), rl.Fade(color, 0.35))
	}
	label := hand.Gesture.String()
	rl.DrawText(label, x-rl.MeasureText(label, 10)/2, y+24, 10, rl.Fade(rl.White, 0.7))
}
