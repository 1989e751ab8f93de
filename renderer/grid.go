package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/systems"
)

// GridRenderer draws the floor and ceiling point planes.
type GridRenderer struct {
	grid  *systems.WallGrid
	color rl.Color
	size  float32
}

// NewGridRenderer builds the grid once; the points never move.
func NewGridRenderer(cfg config.GridConfig, seed int64) *GridRenderer {
	return &GridRenderer{
		grid:  systems.NewWallGrid(cfg, seed),
		color: rl.Fade(rl.White, float32(cfg.PointOpacity)),
		size:  0.04,
	}
}

// Draw renders the grid. Must be called inside 3D mode.
func (r *GridRenderer) Draw() {
	for _, p := range r.grid.Floor {
		rl.DrawCube(rl.NewVector3(p.X(), p.Y(), p.Z()), r.size, r.size, r.size, r.color)
	}
	for _, p := range r.grid.Ceiling {
		rl.DrawCube(rl.NewVector3(p.X(), p.Y(), p.Z()), r.size, r.size, r.size, r.color)
	}
}
