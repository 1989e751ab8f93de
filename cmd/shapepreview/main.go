// Shape preview tool: morph the field between shapes and tune the wall grid
// with sliders.
//
// Usage: go run ./cmd/shapepreview [--config path]
package main

import (
	"fmt"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/oracle/camera"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/field"
	"github.com/pthm-cable/oracle/renderer"
	"github.com/pthm-cable/oracle/shape"
)

const (
	windowWidth  = 1200
	windowHeight = 760
	panelWidth   = 300
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "shapepreview",
		Short:        "Preview shapes and the wall grid",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			run(cfg)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// preview is the tool state. Changing count or grid settings rebuilds the
// matching part.
type preview struct {
	cfg    *config.Config
	rng    *rand.Rand
	field  *field.Field
	grid   *renderer.GridRenderer
	points *renderer.FieldRenderer
	cam    *camera.Camera

	target shape.ID
	frame  uint64
	rotate bool
}

func newPreview(cfg *config.Config) *preview {
	p := &preview{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(1)),
		points: renderer.NewFieldRenderer(cfg.Render),
		target: shape.Sphere,
		rotate: true,
		cam: camera.New(windowWidth-panelWidth, windowHeight,
			float32(cfg.Camera.Distance),
			float32(cfg.Camera.FOV),
			float32(cfg.Camera.MinDistance),
			float32(cfg.Camera.MaxDistance)),
	}
	p.cam.AutoRotateSpeed = float32(cfg.Camera.AutoRotateSpeed)
	p.rebuildField()
	p.rebuildGrid()
	return p
}

func (p *preview) rebuildField() {
	p.field = field.New(field.ParamsFromConfig(p.cfg), p.rng)
	p.frame = 0
}

func (p *preview) rebuildGrid() {
	p.grid = renderer.NewGridRenderer(p.cfg.Grid, 1)
}

func (p *preview) step() {
	p.field.Step(field.FrameInput{
		Mode:  components.ModeFuture,
		Shape: p.target,
		Hand:  components.NoHand,
		Time:  float64(p.frame) * p.cfg.Derived.DT,
	})
	p.frame++
	p.cam.Update(rl.GetFrameTime(), p.rotate)
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		p.cam.ZoomBy(1 + wheel*0.1)
	}
}

func (p *preview) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(5, 5, 5, 255))

	rl.BeginMode3D(renderer.Camera3D(p.cam))
	p.grid.Draw()
	p.points.Draw(p.field, components.ModeFuture)
	rl.EndMode3D()

	st := p.field.Stats()
	rl.DrawText(fmt.Sprintf("%s | %d particles | target dist %.2f | %d fps",
		p.target, p.field.Count(), st.MeanTargetDist, rl.GetFPS()), 10, 10, 16, rl.LightGray)

	p.drawPanel()
	rl.EndDrawing()
}

func (p *preview) drawPanel() {
	x := float32(windowWidth - panelWidth + 10)
	y := float32(10)
	w := float32(panelWidth - 20)
	rl.DrawRectangle(int32(x-10), 0, panelWidth, windowHeight, rl.NewColor(20, 20, 28, 255))

	rl.DrawText("Shape", int32(x), int32(y), 20, rl.LightGray)
	y += 30
	for _, id := range shape.All {
		label := id.String()
		if id == p.target {
			label = "[" + label + "]"
		}
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 26}, label) {
			p.target = id
		}
		y += 30
	}

	y += 10
	p.rotate = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 18, Height: 18}, "auto-rotate", p.rotate)
	y += 35

	rl.DrawText("Particles", int32(x), int32(y), 14, rl.Gray)
	y += 18
	count := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w - 60, Height: 20}, "", "",
		float32(p.cfg.Field.Count), 100, 12000)
	rl.DrawText(fmt.Sprintf("%d", p.cfg.Field.Count), int32(x+w-50), int32(y+2), 16, rl.LightGray)
	if n := int(count); n != p.cfg.Field.Count {
		p.cfg.Field.Count = n
		p.rebuildField()
	}
	y += 40

	rl.DrawText("Grid", int32(x), int32(y), 20, rl.LightGray)
	y += 30
	changed := false
	changed = slider(&p.cfg.Grid.NoiseScale, "noise scale", x, &y, w, 0.05, 2) || changed
	changed = slider(&p.cfg.Grid.FloorKeep, "floor keep", x, &y, w, 0, 1) || changed
	changed = slider(&p.cfg.Grid.CeilingKeep, "ceiling keep", x, &y, w, 0, 1) || changed
	changed = slider(&p.cfg.Grid.PointOpacity, "opacity", x, &y, w, 0, 1) || changed
	if changed {
		p.rebuildGrid()
	}
}

// slider draws a labelled slider and reports whether it moved the value.
func slider(v *float64, label string, x float32, y *float32, w, lo, hi float32) bool {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	nv := gui.SliderBar(rl.Rectangle{X: x, Y: *y, Width: w - 60, Height: 20}, "", "", float32(*v), lo, hi)
	rl.DrawText(fmt.Sprintf("%.2f", *v), int32(x+w-50), int32(*y+2), 16, rl.LightGray)
	*y += 35
	if nv == float32(*v) {
		return false
	}
	*v = float64(nv)
	return true
}

func run(cfg *config.Config) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(windowWidth, windowHeight, "Shape Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	p := newPreview(cfg)
	for !rl.WindowShouldClose() {
		p.step()
		p.draw()
	}
}
