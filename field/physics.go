package field

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// morph eases every particle toward its target slot with a small
// index-seeded wobble. Colours are pinned to the neutral grey.
func (f *Field) morph(t float64) {
	lerp := f.params.LerpFactor
	amp := float64(f.params.JitterAmplitude)
	neutral := f.params.NeutralColor

	for i := 0; i < f.count; i++ {
		i3 := i * 3
		fi := float64(i)
		jx := float32(math.Sin(t*0.5+fi) * amp)
		jy := float32(math.Cos(t*0.3+fi*0.2) * amp)

		f.pos[i3] += (f.target[i3]-f.pos[i3])*lerp + jx
		f.pos[i3+1] += (f.target[i3+1]-f.pos[i3+1])*lerp + jy
		f.pos[i3+2] += (f.target[i3+2] - f.pos[i3+2]) * lerp

		f.col[i3] = neutral
		f.col[i3+1] = neutral
		f.col[i3+2] = neutral
	}
}

// HandLocal projects a normalized hand position onto the z=0 plane and
// then into the field's rotated frame. ok is false when no hand is tracked.
func (f *Field) HandLocal(x, y float64, detected bool) (mgl32.Vec3, bool) {
	if !detected {
		return mgl32.Vec3{}, false
	}
	world := mgl32.Vec3{
		float32(x-0.5) * f.params.ViewWidth,
		-float32(y-0.5) * f.params.ViewHeight,
		0,
	}
	return mgl32.Rotate3DY(-f.rotation).Mul3x1(world), true
}

// physics integrates one EVOCA frame: forces, damping, then position.
func (f *Field) physics(in FrameInput) {
	p := &f.params
	hand, haveHand := f.HandLocal(in.Hand.X, in.Hand.Y, in.Hand.Detected)
	charge := float32(in.Charge)

	switch {
	case charge > p.ChargeEpsilon:
		tint := lerp3(p.ChargedColorLow, p.ChargedColorHigh, charge)
		for i := 0; i < f.count; i++ {
			f.charged(i*3, hand, haveHand, charge, tint)
		}
	case in.Explode:
		for i := 0; i < f.count; i++ {
			f.explode(i * 3)
		}
	default:
		t := float32(in.Time)
		for i := 0; i < f.count; i++ {
			f.idle(i*3, t)
		}
	}
}

func (f *Field) charged(i3 int, hand mgl32.Vec3, haveHand bool, charge float32, tint [3]float32) {
	p := &f.params
	pos := mgl32.Vec3{f.pos[i3], f.pos[i3+1], f.pos[i3+2]}
	vel := mgl32.Vec3{f.vel[i3], f.vel[i3+1], f.vel[i3+2]}

	if haveHand {
		d := hand.Sub(pos)
		vel = vel.Add(d.Mul(p.Attraction * charge))

		// Push back out of the core so the cluster keeps a radius
		if dist := d.Len(); dist > 0 && dist < p.CoreRadius {
			push := p.CoreStrength * (1 - dist/p.CoreRadius)
			vel = vel.Sub(d.Mul(push / dist))
		}
	}

	turb := p.Turbulence * charge
	vel = vel.Add(mgl32.Vec3{
		(f.rng.Float32() - 0.5) * turb,
		(f.rng.Float32() - 0.5) * turb,
		(f.rng.Float32() - 0.5) * turb,
	})
	vel = vel.Mul(p.ChargedDamping)

	f.integrate(i3, pos, vel)
	f.relaxColor(i3, tint, p.ChargedColorRate)
}

// explode replaces the velocity with a random outward kick. No damping on
// this frame.
func (f *Field) explode(i3 int) {
	p := &f.params
	pos := mgl32.Vec3{f.pos[i3], f.pos[i3+1], f.pos[i3+2]}
	speed := p.ExplodeMinSpeed + f.rng.Float32()*(p.ExplodeMaxSpeed-p.ExplodeMinSpeed)
	vel := f.randomUnit().Mul(speed)

	f.integrate(i3, pos, vel)
	f.col[i3] = 1
	f.col[i3+1] = 1
	f.col[i3+2] = 1
}

// idle drifts particles home through a smooth sine/cosine flow.
func (f *Field) idle(i3 int, t float32) {
	p := &f.params
	pos := mgl32.Vec3{f.pos[i3], f.pos[i3+1], f.pos[i3+2]}
	vel := mgl32.Vec3{f.vel[i3], f.vel[i3+1], f.vel[i3+2]}
	home := mgl32.Vec3{f.home[i3], f.home[i3+1], f.home[i3+2]}

	vel = vel.Add(home.Sub(pos).Mul(p.HomeStrength))

	px, py, pz := pos[0], pos[1], pos[2]
	flow := mgl32.Vec3{
		sin32(py*0.5+t*0.7) + cos32(pz*0.3+t*0.4),
		sin32(pz*0.5+t*0.6) + cos32(px*0.3+t*0.5),
		sin32(px*0.5+t*0.8) + cos32(py*0.3+t*0.3),
	}
	vel = vel.Add(flow.Mul(p.FlowStrength))
	vel = vel.Mul(p.IdleDamping)

	f.integrate(i3, pos, vel)
	base := p.BaseColor
	f.relaxColor(i3, [3]float32{base, base, base}, p.IdleColorRate)
}

func (f *Field) integrate(i3 int, pos, vel mgl32.Vec3) {
	pos = pos.Add(vel)
	f.pos[i3], f.pos[i3+1], f.pos[i3+2] = pos[0], pos[1], pos[2]
	f.vel[i3], f.vel[i3+1], f.vel[i3+2] = vel[0], vel[1], vel[2]
}

func (f *Field) relaxColor(i3 int, to [3]float32, rate float32) {
	for k := 0; k < 3; k++ {
		f.col[i3+k] += (to[k] - f.col[i3+k]) * rate
	}
}

func (f *Field) randomUnit() mgl32.Vec3 {
	theta := f.rng.Float64() * 2 * math.Pi
	phi := math.Acos(f.rng.Float64()*2 - 1)
	return mgl32.Vec3{
		float32(math.Sin(phi) * math.Cos(theta)),
		float32(math.Sin(phi) * math.Sin(theta)),
		float32(math.Cos(phi)),
	}
}

func lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func sin32(v float32) float32 { return float32(math.Sin(float64(v))) }
func cos32(v float32) float32 { return float32(math.Cos(float64(v))) }
