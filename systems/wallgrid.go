package systems

import (
	"math"
	"sort"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/oracle/config"
)

// WallGrid holds the sparse floor and ceiling point planes drawn behind the
// field.
type WallGrid struct {
	Floor   []mgl32.Vec3
	Ceiling []mgl32.Vec3
}

// NewWallGrid lays a square lattice on each plane and keeps the points with
// the highest noise value, so the kept points form soft clusters instead of
// uniform speckle.
func NewWallGrid(cfg config.GridConfig, seed int64) *WallGrid {
	if !cfg.Enabled || cfg.Spacing <= 0 || cfg.Extent <= 0 {
		return &WallGrid{}
	}
	noise := perlin.NewPerlin(2, 2, 3, seed)
	return &WallGrid{
		Floor:   plane(noise, cfg, float32(cfg.FloorY), cfg.FloorKeep, 0),
		Ceiling: plane(noise, cfg, float32(cfg.CeilingY), cfg.CeilingKeep, 1000),
	}
}

// Len returns the total point count.
func (g *WallGrid) Len() int {
	return len(g.Floor) + len(g.Ceiling)
}

type scored struct {
	p     mgl32.Vec3
	score float64
}

func plane(noise *perlin.Perlin, cfg config.GridConfig, y float32, keep, offset float64) []mgl32.Vec3 {
	keep = min(max(keep, 0), 1)
	steps := int(math.Floor(2*cfg.Extent/cfg.Spacing)) + 1

	candidates := make([]scored, 0, steps*steps)
	for i := 0; i < steps; i++ {
		x := -cfg.Extent + float64(i)*cfg.Spacing
		for j := 0; j < steps; j++ {
			z := -cfg.Extent + float64(j)*cfg.Spacing
			candidates = append(candidates, scored{
				p:     mgl32.Vec3{float32(x), y, float32(z)},
				score: noise.Noise2D(x*cfg.NoiseScale+offset, z*cfg.NoiseScale+offset),
			})
		}
	}

	n := int(math.Round(keep * float64(len(candidates))))
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	points := make([]mgl32.Vec3, n)
	for i := range points {
		points[i] = candidates[i].p
	}
	return points
}
