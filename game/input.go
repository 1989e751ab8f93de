package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/components"
)

// handleInput processes window, camera and hand input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	// Typing into the question box must not move the camera
	if g.hud == nil || !g.hud.Editing() {
		g.handleCameraInput()
	}
	g.handlePointer()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	if g.hud != nil {
		g.hud.Resize(int32(w), int32(h))
	}
}

// handleCameraInput orbits with the arrow keys or a right-button drag and
// zooms with the wheel.
func (g *Game) handleCameraInput() {
	speed := float32(g.cfg.Camera.RotateSpeed) * float32(g.cfg.Derived.DT)

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(speed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(-speed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Orbit(0, speed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Orbit(0, -speed)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		if g.dragging {
			g.camera.Orbit(-delta.X*0.005, delta.Y*0.005)
		}
		g.dragging = true
	} else {
		g.dragging = false
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handlePointer moves the synthetic hand. Only EVOCA listens to it; the
// left button closes the fist.
func (g *Game) handlePointer() {
	pointer := g.capture.Pointer
	if pointer == nil {
		return
	}
	if g.driver.Mode() != components.ModeEvoca || g.screenWidth <= 0 || g.screenHeight <= 0 {
		pointer.Update(0.5, 0.5, false, false)
		return
	}

	mouse := rl.GetMousePosition()
	x := float64(mouse.X / g.screenWidth)
	y := float64(mouse.Y / g.screenHeight)
	inView := rl.IsCursorOnScreen() && x >= 0 && x <= 1 && y >= 0 && y <= 1
	pointer.Update(x, y, rl.IsMouseButtonDown(rl.MouseButtonLeft), inView)
}
