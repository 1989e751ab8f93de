package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/systems"
)

// EffectsRenderer draws shockwave rings and sparks in the field's frame.
type EffectsRenderer struct{}

// NewEffectsRenderer creates a new effects renderer.
func NewEffectsRenderer() *EffectsRenderer {
	return &EffectsRenderer{}
}

// Draw renders all live effects. rotation is the field rotation in radians
// so effects stay attached to the particles. Must be called inside 3D mode.
func (r *EffectsRenderer) Draw(s *systems.ShockwaveSystem, rotation float32) {
	rl.BeginBlendMode(rl.BlendAdditive)
	rl.PushMatrix()
	rl.Rotatef(rotation*rl.Rad2deg, 0, 1, 0)

	s.EachRing(func(pos components.Position, ring components.Ring, alpha float32) {
		// Rings lie in the z=0 plane facing the camera
		color := rl.Color{R: 255, G: 240, B: 200, A: uint8(alpha * alpha * 255)}
		rl.DrawCircle3D(rl.NewVector3(pos.X, pos.Y, pos.Z), ring.Radius, rl.NewVector3(0, 0, 1), 0, color)
	})

	s.EachSpark(func(pos components.Position, alpha float32) {
		size := 0.06 + 0.1*alpha
		color := rl.Color{R: 255, G: 255, B: 255, A: uint8(alpha * 255)}
		rl.DrawCube(rl.NewVector3(pos.X, pos.Y, pos.Z), size, size, size, color)
	})

	rl.PopMatrix()
	rl.EndBlendMode()
}
