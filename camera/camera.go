// Package camera provides an orbit camera around the particle field.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits the origin at a fixed target.
type Camera struct {
	// Yaw and Pitch in radians. Pitch is clamped short of the poles.
	Yaw, Pitch float32

	// Distance from the origin
	Distance float32

	// Vertical field of view in degrees
	FOV float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// AutoRotateSpeed is radians per second applied by Update when enabled.
	AutoRotateSpeed float32

	initialDistance float32
}

const (
	maxPitch  = math.Pi/2 - 0.05
	nearPlane = 0.1
	farPlane  = 500
)

// New creates a camera looking down -Z at the origin.
func New(viewportW, viewportH, distance, fov, minDistance, maxDistance float32) *Camera {
	c := &Camera{
		FOV:             fov,
		ViewportW:       viewportW,
		ViewportH:       viewportH,
		MinDistance:     minDistance,
		MaxDistance:     maxDistance,
		initialDistance: distance,
	}
	c.Reset()
	return c
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		c.Distance * cp * float32(math.Sin(float64(c.Yaw))),
		c.Distance * float32(math.Sin(float64(c.Pitch))),
		c.Distance * cp * float32(math.Cos(float64(c.Yaw))),
	}
}

// Target is the point the camera looks at.
func (c *Camera) Target() mgl32.Vec3 { return mgl32.Vec3{} }

// Up is the camera up vector.
func (c *Camera) Up() mgl32.Vec3 { return mgl32.Vec3{0, 1, 0} }

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target(), c.Up())
}

// Projection returns the perspective projection for the viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, nearPlane, farPlane)
}

// WorldToScreen projects a world point to screen pixels with y down.
// visible is false for points behind the camera.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32, visible bool) {
	eye := c.View().Mul4x1(p.Vec4(1))
	if eye.Z() >= -nearPlane {
		return 0, 0, false
	}
	win := mgl32.Project(p, c.View(), c.Projection(), 0, 0, int(c.ViewportW), int(c.ViewportH))
	return win.X(), c.ViewportH - win.Y(), true
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Orbit rotates the camera by the given yaw and pitch deltas in radians.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = wrapAngle(c.Yaw + dYaw)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by factor, so factor > 1 moves closer.
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Update advances auto-rotation by dt seconds when autoRotate is set.
func (c *Camera) Update(dt float32, autoRotate bool) {
	if autoRotate {
		c.Orbit(c.AutoRotateSpeed*dt, 0)
	}
}

// Reset returns the camera to the front view at the initial distance.
func (c *Camera) Reset() {
	c.Yaw = 0
	c.Pitch = 0
	c.SetDistance(c.initialDistance)
}

// wrapAngle keeps an angle in [-pi, pi).
func wrapAngle(a float32) float32 {
	r := float32(math.Mod(float64(a)+math.Pi, 2*math.Pi))
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
