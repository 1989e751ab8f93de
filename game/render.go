package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/renderer"
)

// Draw renders the scene and the HUD, then applies the HUD's actions.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(background(g.cfg.Render.Background))

	d := g.driver
	f := d.Field()

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	g.gridRenderer.Draw()
	g.fieldRenderer.Draw(f, d.Mode())
	g.effectsRenderer.Draw(d.Shockwaves(), f.Rotation())
	rl.EndMode3D()

	renderer.DrawHandCursor(d.Hand(), d.Charge(), g.screenWidth, g.screenHeight)

	act := g.hud.Draw(g.hudState(), rl.GetFrameTime())
	g.drawFooter()

	rl.EndDrawing()

	g.applyActions(act)
}

// drawFooter shows FPS, the last step cost and the particle count in the
// top-left corner.
func (g *Game) drawFooter() {
	d := g.driver
	step := float64(d.Perf().Last().Microseconds()) / 1000
	text := fmt.Sprintf("%d fps | step %.2fms | %d particles | frame %d", rl.GetFPS(), step, d.Field().Count(), d.Frame())
	rl.DrawText(text, 10, 10, 12, rl.Fade(rl.RayWhite, 0.5))
}
