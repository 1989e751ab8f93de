// Package term renders the particle field into a terminal with tcell and
// uses the mouse as the hand.
package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/oracle/camera"
)

// Cell is one rasterized particle.
type Cell struct {
	X, Y  int
	Glyph rune
	Color tcell.Color
	depth float32
}

// glyphs from far to near
var glyphs = []rune{'.', '·', '∙', '•', '●'}

// Rasterizer projects particles onto a character grid, keeping the nearest
// particle per cell.
type Rasterizer struct {
	cells []Cell
	index map[int]int // y*cols+x -> position in cells
}

// NewRasterizer creates an empty rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{index: make(map[int]int)}
}

// Rasterize projects flat xyz positions with rgb colors, rotated about Y by
// rotation, into a cols x rows grid seen through cam. The returned slice is
// reused by the next call.
func (r *Rasterizer) Rasterize(pos, col []float32, rotation float32, cam *camera.Camera, cols, rows int) []Cell {
	r.cells = r.cells[:0]
	clear(r.index)
	if cols <= 0 || rows <= 0 || cam.ViewportW <= 0 || cam.ViewportH <= 0 {
		return r.cells
	}

	rot := mgl32.Rotate3DY(rotation)
	eye := cam.Position()
	dist := cam.Distance

	n := len(pos) / 3
	for i := 0; i < n; i++ {
		i3 := i * 3
		p := rot.Mul3x1(mgl32.Vec3{pos[i3], pos[i3+1], pos[i3+2]})
		sx, sy, ok := cam.WorldToScreen(p)
		if !ok {
			continue
		}
		x := int(sx / cam.ViewportW * float32(cols))
		y := int(sy / cam.ViewportH * float32(rows))
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}

		depth := p.Sub(eye).Len()
		key := y*cols + x
		if j, seen := r.index[key]; seen {
			if r.cells[j].depth <= depth {
				continue
			}
			r.cells[j] = r.cell(x, y, depth, dist, col[i3:i3+3])
			continue
		}
		r.index[key] = len(r.cells)
		r.cells = append(r.cells, r.cell(x, y, depth, dist, col[i3:i3+3]))
	}
	return r.cells
}

func (r *Rasterizer) cell(x, y int, depth, dist float32, rgb []float32) Cell {
	// Particles at the orbit distance get the middle glyph, nearer ones heavier
	t := 0.5 + (dist-depth)/dist
	g := int(t*float32(len(glyphs)-1) + 0.5)
	g = max(0, min(g, len(glyphs)-1))
	return Cell{
		X:     x,
		Y:     y,
		Glyph: glyphs[g],
		Color: tcell.NewRGBColor(channel(rgb[0]), channel(rgb[1]), channel(rgb[2])),
		depth: depth,
	}
}

func channel(v float32) int32 {
	return int32(min(max(v, 0), 1) * 255)
}
