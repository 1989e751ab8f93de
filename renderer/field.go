// Package renderer draws the particle field, the wall grid, explosion
// effects and the hand cursor with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/camera"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/field"
)

// Camera3D converts the orbit camera for raylib's 3D mode.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	pos, target, up := cam.Position(), cam.Target(), cam.Up()
	return rl.Camera3D{
		Position:   rl.NewVector3(pos.X(), pos.Y(), pos.Z()),
		Target:     rl.NewVector3(target.X(), target.Y(), target.Z()),
		Up:         rl.NewVector3(up.X(), up.Y(), up.Z()),
		Fovy:       cam.FOV,
		Projection: rl.CameraPerspective,
	}
}

// FieldRenderer draws every particle as a small cube in its buffer color.
type FieldRenderer struct {
	pointSize      float32
	pointSizeEvoca float32
	opacity        float32
	additive       bool
}

// NewFieldRenderer creates a renderer from the render config.
func NewFieldRenderer(cfg config.RenderConfig) *FieldRenderer {
	return &FieldRenderer{
		pointSize:      float32(cfg.PointSize),
		pointSizeEvoca: float32(cfg.PointSizeEvoca),
		opacity:        float32(cfg.Opacity),
		additive:       cfg.Additive,
	}
}

// Draw renders the field. Must be called between rl.BeginMode3D and
// rl.EndMode3D.
func (r *FieldRenderer) Draw(f *field.Field, mode components.Mode) {
	size := r.pointSize
	if mode == components.ModeEvoca {
		size = r.pointSizeEvoca
	}
	alpha := uint8(clamp01(r.opacity) * 255)

	if r.additive {
		rl.BeginBlendMode(rl.BlendAdditive)
	}
	rl.PushMatrix()
	rl.Rotatef(f.Rotation()*rl.Rad2deg, 0, 1, 0)

	pos := f.Positions()
	col := f.Colors()
	for i := 0; i < f.Count(); i++ {
		i3 := i * 3
		color := rl.Color{
			R: uint8(clamp01(col[i3]) * 255),
			G: uint8(clamp01(col[i3+1]) * 255),
			B: uint8(clamp01(col[i3+2]) * 255),
			A: alpha,
		}
		rl.DrawCube(rl.NewVector3(pos[i3], pos[i3+1], pos[i3+2]), size, size, size, color)
	}

	rl.PopMatrix()
	if r.additive {
		rl.EndBlendMode()
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
