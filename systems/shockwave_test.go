package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
)

func newTestShockwaves() *ShockwaveSystem {
	w := ecs.NewWorld()
	p := ShockwaveParamsFromConfig(config.Defaults())
	return NewShockwaveSystem(w, p, rand.New(rand.NewSource(1)))
}

func TestShockwaveSpawn(t *testing.T) {
	s := newTestShockwaves()
	s.Spawn(1, 2, 0)

	rings, sparks := s.Counts()
	if rings != 1 {
		t.Errorf("rings = %d, want 1", rings)
	}
	if sparks != s.params.Sparks {
		t.Errorf("sparks = %d, want %d", sparks, s.params.Sparks)
	}
}

func TestShockwaveRingExpandsAndFades(t *testing.T) {
	s := newTestShockwaves()
	s.Spawn(0, 0, 0)

	var lastRadius, lastAlpha float32 = -1, 2
	for i := 0; i < 5; i++ {
		s.Update()
		s.EachRing(func(_ components.Position, ring components.Ring, alpha float32) {
			if ring.Radius <= lastRadius {
				t.Errorf("frame %d: radius %v did not grow past %v", i, ring.Radius, lastRadius)
			}
			if alpha >= lastAlpha {
				t.Errorf("frame %d: alpha %v did not fall below %v", i, alpha, lastAlpha)
			}
			lastRadius, lastAlpha = ring.Radius, alpha
		})
	}
}

func TestShockwaveExpires(t *testing.T) {
	s := newTestShockwaves()
	s.Spawn(0, 0, 0)
	s.Spawn(3, 0, 0)

	frames := int(max(s.params.RingLifetime, s.params.SparkLifetime))
	for i := 0; i < frames; i++ {
		s.Update()
	}
	if rings, sparks := s.Counts(); rings != 0 || sparks != 0 {
		t.Errorf("after %d frames: %d rings, %d sparks left", frames, rings, sparks)
	}
}

func TestSparksSlowDown(t *testing.T) {
	s := newTestShockwaves()
	s.params.Sparks = 1
	s.params.RingLifetime = 0
	s.Spawn(0, 0, 0)

	var positions []components.Position
	for i := 0; i < 4; i++ {
		s.Update()
		s.EachSpark(func(pos components.Position, _ float32) {
			positions = append(positions, pos)
		})
	}
	if len(positions) != 4 {
		t.Fatalf("tracked %d spark positions, want 4", len(positions))
	}
	step := func(a, b components.Position) float32 {
		dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
		return dx*dx + dy*dy + dz*dz
	}
	if step(positions[2], positions[3]) >= step(positions[0], positions[1]) {
		t.Error("spark did not decelerate under drag")
	}
}
