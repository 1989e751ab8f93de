package gesture

import "github.com/pthm-cable/oracle/components"

// fingerChains lists MCP, PIP, DIP, TIP indices for the four tracked fingers.
var fingerChains = [4][4]int{
	{5, 6, 7, 8},
	{9, 10, 11, 12},
	{13, 14, 15, 16},
	{17, 18, 19, 20},
}

// knuckleOffsets place the MCP joints relative to the middle knuckle, in
// units of palm length.
var knuckleOffsets = [4][2]float64{
	{-0.30, 0.05},
	{0, 0},
	{0.25, 0.05},
	{0.45, 0.15},
}

// Synthesize builds a 21-point hand in image coordinates with the middle
// knuckle at (cx, cy) and a palm length of size. Fingers flagged in curled
// fold back toward the wrist; the others extend past their knuckle. Used by
// pointer-driven devices and tests in place of a camera detector.
func Synthesize(cx, cy, size float64, curled [4]bool) []components.Landmark {
	lm := make([]components.Landmark, NumLandmarks)
	wrist := components.Landmark{X: cx, Y: cy + size}
	lm[Wrist] = wrist

	// Thumb along the index side
	lm[1] = components.Landmark{X: cx - 0.35*size, Y: cy + 0.8*size}
	lm[2] = components.Landmark{X: cx - 0.55*size, Y: cy + 0.55*size}
	lm[3] = components.Landmark{X: cx - 0.65*size, Y: cy + 0.35*size}
	lm[ThumbTip] = components.Landmark{X: cx - 0.75*size, Y: cy + 0.2*size}

	for f, chain := range fingerChains {
		mcp := components.Landmark{
			X: cx + knuckleOffsets[f][0]*size,
			Y: cy + knuckleOffsets[f][1]*size,
		}
		dx, dy := mcp.X-wrist.X, mcp.Y-wrist.Y

		var tip components.Landmark
		if curled[f] {
			// Tip folds into the palm
			tip = components.Landmark{X: wrist.X + dx*0.7, Y: wrist.Y + dy*0.7, Z: -0.02}
		} else {
			tip = components.Landmark{X: mcp.X + dx*0.9, Y: mcp.Y + dy*0.9}
		}

		lm[chain[0]] = mcp
		lm[chain[1]] = lerp(mcp, tip, 1.0/3)
		lm[chain[2]] = lerp(mcp, tip, 2.0/3)
		lm[chain[3]] = tip
	}
	return lm
}

// OpenHand returns a synthetic hand with every finger extended.
func OpenHand(cx, cy, size float64) []components.Landmark {
	return Synthesize(cx, cy, size, [4]bool{})
}

// Fist returns a synthetic hand with every finger curled.
func Fist(cx, cy, size float64) []components.Landmark {
	return Synthesize(cx, cy, size, [4]bool{true, true, true, true})
}

func lerp(a, b components.Landmark, t float64) components.Landmark {
	return components.Landmark{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}
