package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/shape"
)

func newTestField(count int, seed int64) *Field {
	p := DefaultParams()
	p.Count = count
	return New(p, rand.New(rand.NewSource(seed)))
}

func centreHand() components.HandSample {
	return components.HandSample{X: 0.5, Y: 0.5, Detected: true, Gesture: components.GestureClosedFist}
}

func TestNewBuffers(t *testing.T) {
	f := newTestField(300, 1)

	for name, buf := range map[string][]float32{
		"positions":  f.Positions(),
		"velocities": f.Velocities(),
		"colors":     f.Colors(),
		"homes":      f.Homes(),
		"target":     f.Target(),
	} {
		if len(buf) != 900 {
			t.Errorf("%s len = %d, want 900", name, len(buf))
		}
	}
	for i, v := range f.Positions() {
		if f.Homes()[i] != v {
			t.Fatalf("home %d = %v, want starting position %v", i, f.Homes()[i], v)
		}
	}
	if f.Shape() != shape.Random {
		t.Errorf("initial shape = %v, want RANDOM", f.Shape())
	}
}

func TestBuffersNeverReallocated(t *testing.T) {
	f := newTestField(100, 2)
	pos, vel, col := &f.Positions()[0], &f.Velocities()[0], &f.Colors()[0]

	inputs := []FrameInput{
		{Mode: components.ModeFuture, Shape: shape.Cube},
		{Mode: components.ModeEvoca, Shape: shape.Random, Hand: centreHand(), Charge: 0.5},
		{Mode: components.ModeEvoca, Shape: shape.Random, Explode: true},
		{Mode: components.ModePast, Shape: shape.Heart},
	}
	for _, in := range inputs {
		f.Step(in)
	}
	if &f.Positions()[0] != pos || &f.Velocities()[0] != vel || &f.Colors()[0] != col {
		t.Error("particle buffers were reallocated")
	}
}

func TestMorphConverges(t *testing.T) {
	f := newTestField(500, 3)
	in := FrameInput{Mode: components.ModeFuture, Shape: shape.Sphere}

	prev := math.Inf(1)
	for frame := 0; frame < 300; frame++ {
		in.Time = float64(frame) / 60
		f.Step(in)
		if frame%25 != 0 {
			continue
		}
		d := f.Stats().MeanTargetDist
		// Allow for the jitter amplitude
		if d > prev+0.05 {
			t.Fatalf("frame %d: mean target distance rose %v -> %v", frame, prev, d)
		}
		prev = d
	}
	if prev > 1.0 {
		t.Errorf("mean distance to target after 300 frames = %v, want < 1", prev)
	}

	for i, c := range f.Colors() {
		if c != f.Params().NeutralColor {
			t.Fatalf("colour %d = %v, want neutral", i, c)
		}
	}
}

func TestRotationOnlyWhileMorphing(t *testing.T) {
	f := newTestField(10, 4)
	for i := 0; i < 10; i++ {
		f.Step(FrameInput{Mode: components.ModePast, Shape: shape.Random})
	}
	want := 10 * f.Params().RotationSpeed
	if math.Abs(float64(f.Rotation()-want)) > 1e-6 {
		t.Errorf("rotation = %v, want %v", f.Rotation(), want)
	}

	f.Step(FrameInput{Mode: components.ModeEvoca, Shape: shape.Random})
	if math.Abs(float64(f.Rotation()-want)) > 1e-6 {
		t.Errorf("EVOCA step changed rotation to %v", f.Rotation())
	}
}

func TestTargetRegeneratedOnlyOnShapeChange(t *testing.T) {
	f := newTestField(50, 5)
	var dirty []Dirty
	f.AddListener(ListenerFunc(func(d Dirty) { dirty = append(dirty, d) }))

	f.Step(FrameInput{Mode: components.ModeFuture, Shape: shape.Star})
	first := &f.Target()[0]
	f.Step(FrameInput{Mode: components.ModeFuture, Shape: shape.Star})
	if &f.Target()[0] != first {
		t.Error("target regenerated without a shape change")
	}
	f.Step(FrameInput{Mode: components.ModeFuture, Shape: shape.Torus})

	if len(dirty) != 3 {
		t.Fatalf("got %d dirty notifications, want 3", len(dirty))
	}
	wantRetarget := []bool{true, false, true}
	for i, d := range dirty {
		if d.Retarget != wantRetarget[i] {
			t.Errorf("notification %d retarget = %v, want %v", i, d.Retarget, wantRetarget[i])
		}
		if !d.Positions || !d.Colors {
			t.Errorf("notification %d = %+v, want positions and colours dirty", i, d)
		}
		if d.Frame != uint64(i+1) {
			t.Errorf("notification %d frame = %d, want %d", i, d.Frame, i+1)
		}
	}
}

func TestRetargetResamplesSameShape(t *testing.T) {
	f := newTestField(50, 5)
	var dirty []Dirty
	f.AddListener(ListenerFunc(func(d Dirty) { dirty = append(dirty, d) }))

	f.Step(FrameInput{Mode: components.ModeFuture, Shape: shape.Star})
	before := append([]float32(nil), f.Target()...)

	f.Retarget(shape.Star)
	if f.Shape() != shape.Star {
		t.Errorf("shape = %v, want STAR", f.Shape())
	}
	same := true
	for i, v := range f.Target() {
		if v != before[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Retarget kept the previous sample")
	}

	f.Step(FrameInput{Mode: components.ModeFuture, Shape: shape.Star})
	f.Step(FrameInput{Mode: components.ModeFuture, Shape: shape.Star})
	wantRetarget := []bool{true, true, false}
	for i, d := range dirty {
		if d.Retarget != wantRetarget[i] {
			t.Errorf("notification %d retarget = %v, want %v", i, d.Retarget, wantRetarget[i])
		}
	}
}

func TestUnknownModeIsNoop(t *testing.T) {
	f := newTestField(20, 6)
	before := append([]float32(nil), f.Positions()...)
	calls := 0
	f.AddListener(ListenerFunc(func(Dirty) { calls++ }))

	f.Step(FrameInput{Mode: components.Mode(99), Shape: shape.Random})

	if calls != 0 {
		t.Errorf("listener called %d times for unknown mode", calls)
	}
	for i, v := range f.Positions() {
		if v != before[i] {
			t.Fatalf("position %d moved in unknown mode", i)
		}
	}
}

func TestIdleReturnsHome(t *testing.T) {
	f := newTestField(50, 7)
	f.pos[0] += 10
	f.pos[1] -= 6
	start := dist3(f.pos, f.home, 0)

	for frame := 0; frame < 2000; frame++ {
		f.Step(FrameInput{Mode: components.ModeEvoca, Shape: shape.Random, Hand: components.NoHand, Time: float64(frame) / 60})
	}
	end := dist3(f.pos, f.home, 0)
	if end >= start || end > 2 {
		t.Errorf("distance to home %v -> %v, want back within 2", start, end)
	}
}

func TestChargedPullsTowardHand(t *testing.T) {
	f := newTestField(400, 8)
	start := f.MeanDistanceTo(0, 0, 0)

	for frame := 0; frame < 60; frame++ {
		f.Step(FrameInput{Mode: components.ModeEvoca, Shape: shape.Random, Hand: centreHand(), Charge: 1})
	}
	end := f.MeanDistanceTo(0, 0, 0)
	if end > 3 || end >= start {
		t.Errorf("mean distance to hand %v -> %v, want a tight cluster", start, end)
	}

	high := f.Params().ChargedColorHigh
	col := f.Colors()
	for i := 0; i < f.Count(); i++ {
		for k := 0; k < 3; k++ {
			if math.Abs(float64(col[i*3+k]-high[k])) > 0.05 {
				t.Fatalf("particle %d channel %d = %v, want near charged hue %v", i, k, col[i*3+k], high[k])
			}
		}
	}
}

func TestMissingHandSkipsHandForces(t *testing.T) {
	f := newTestField(400, 9)
	start := f.MeanDistanceTo(0, 0, 0)

	for frame := 0; frame < 30; frame++ {
		f.Step(FrameInput{Mode: components.ModeEvoca, Shape: shape.Random, Hand: components.NoHand, Charge: 1})
	}
	for i, v := range f.Positions() {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("position %d = %v", i, v)
		}
	}
	if end := f.MeanDistanceTo(0, 0, 0); end < start*0.7 {
		t.Errorf("particles collapsed without a hand: %v -> %v", start, end)
	}
}

func TestExplodeKicksOutward(t *testing.T) {
	f := newTestField(500, 10)
	f.Step(FrameInput{Mode: components.ModeEvoca, Shape: shape.Random, Explode: true})

	p := f.Params()
	vel := f.Velocities()
	var sum mgl32.Vec3
	for i := 0; i < f.Count(); i++ {
		v := mgl32.Vec3{vel[i*3], vel[i*3+1], vel[i*3+2]}
		speed := v.Len()
		if speed < p.ExplodeMinSpeed-1e-4 || speed > p.ExplodeMaxSpeed+1e-4 {
			t.Fatalf("particle %d speed %v outside [%v, %v]", i, speed, p.ExplodeMinSpeed, p.ExplodeMaxSpeed)
		}
		sum = sum.Add(v.Normalize())
	}
	// Random directions mostly cancel out
	if mean := sum.Len() / float32(f.Count()); mean > 0.15 {
		t.Errorf("mean direction length = %v, want near zero", mean)
	}
	for i, c := range f.Colors() {
		if c != 1 {
			t.Fatalf("colour %d = %v, want white flash", i, c)
		}
	}
	if got := f.Stats().Explosions; got != 1 {
		t.Errorf("explosions = %d, want 1", got)
	}

	// Next idle frame damps the kick
	before := f.Stats().MeanSpeed
	f.Step(FrameInput{Mode: components.ModeEvoca, Shape: shape.Random})
	if after := f.Stats().MeanSpeed; after >= before {
		t.Errorf("mean speed %v -> %v, want damping after the explosion", before, after)
	}
}

func TestHandLocalUndoesRotation(t *testing.T) {
	f := newTestField(1, 11)
	f.rotation = 1.1

	if _, ok := f.HandLocal(0.5, 0.5, false); ok {
		t.Error("undetected hand should not project")
	}

	local, ok := f.HandLocal(0.9, 0.2, true)
	if !ok {
		t.Fatal("detected hand should project")
	}
	world := mgl32.Rotate3DY(f.rotation).Mul3x1(local)
	p := f.Params()
	want := mgl32.Vec3{0.4 * p.ViewWidth, 0.3 * p.ViewHeight, 0}
	if !world.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("rotated back = %v, want %v", world, want)
	}
}

func TestZeroCount(t *testing.T) {
	f := newTestField(0, 12)
	f.Step(FrameInput{Mode: components.ModeEvoca, Hand: centreHand(), Charge: 1})
	f.Step(FrameInput{Mode: components.ModeFuture, Shape: shape.Face})
	if s := f.Stats(); s.MeanSpeed != 0 || s.Frame != 2 {
		t.Errorf("stats = %+v", s)
	}
}
