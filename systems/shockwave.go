// Package systems holds the ECS systems for transient explosion effects.
package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
)

// ShockwaveParams holds explosion effect parameters.
type ShockwaveParams struct {
	RingLifetime  int32
	RingSpeed     float32
	Sparks        int
	SparkLifetime int32
	SparkSpeed    float32
	SparkDrag     float32
}

// ShockwaveParamsFromConfig converts the effects section.
func ShockwaveParamsFromConfig(cfg *config.Config) ShockwaveParams {
	e := cfg.Effects
	return ShockwaveParams{
		RingLifetime:  int32(e.RingLifetime),
		RingSpeed:     float32(e.RingSpeed),
		Sparks:        e.Sparks,
		SparkLifetime: int32(e.SparkLifetime),
		SparkSpeed:    float32(e.SparkSpeed),
		SparkDrag:     float32(e.SparkDrag),
	}
}

// ShockwaveSystem spawns an expanding ring plus a burst of sparks for each
// explosion and ages them out.
type ShockwaveSystem struct {
	params ShockwaveParams
	rng    *rand.Rand

	ringMapper  *ecs.Map3[components.Position, components.Lifetime, components.Ring]
	sparkMapper *ecs.Map4[components.Position, components.Velocity, components.Lifetime, components.Spark]
	ringFilter  *ecs.Filter3[components.Position, components.Lifetime, components.Ring]
	sparkFilter *ecs.Filter4[components.Position, components.Velocity, components.Lifetime, components.Spark]
}

// NewShockwaveSystem creates the system on world w.
func NewShockwaveSystem(w *ecs.World, params ShockwaveParams, rng *rand.Rand) *ShockwaveSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &ShockwaveSystem{
		params:      params,
		rng:         rng,
		ringMapper:  ecs.NewMap3[components.Position, components.Lifetime, components.Ring](w),
		sparkMapper: ecs.NewMap4[components.Position, components.Velocity, components.Lifetime, components.Spark](w),
		ringFilter:  ecs.NewFilter3[components.Position, components.Lifetime, components.Ring](w),
		sparkFilter: ecs.NewFilter4[components.Position, components.Velocity, components.Lifetime, components.Spark](w),
	}
}

// Spawn emits one ring and the configured number of sparks at (x, y, z).
func (s *ShockwaveSystem) Spawn(x, y, z float32) {
	p := s.params
	if p.RingLifetime > 0 {
		pos := components.Position{X: x, Y: y, Z: z}
		life := components.Lifetime{Remaining: p.RingLifetime, Total: p.RingLifetime}
		ring := components.Ring{Speed: p.RingSpeed}
		s.ringMapper.NewEntity(&pos, &life, &ring)
	}

	if p.SparkLifetime <= 0 {
		return
	}
	for i := 0; i < p.Sparks; i++ {
		theta := s.rng.Float64() * 2 * math.Pi
		phi := math.Acos(s.rng.Float64()*2 - 1)
		speed := p.SparkSpeed * (0.5 + s.rng.Float32())

		pos := components.Position{X: x, Y: y, Z: z}
		vel := components.Velocity{
			X: float32(math.Sin(phi)*math.Cos(theta)) * speed,
			Y: float32(math.Sin(phi)*math.Sin(theta)) * speed,
			Z: float32(math.Cos(phi)) * speed,
		}
		// Stagger so the burst does not vanish on a single frame
		total := p.SparkLifetime - s.rng.Int31n(p.SparkLifetime/4+1)
		life := components.Lifetime{Remaining: total, Total: total}
		spark := components.Spark{Drag: p.SparkDrag}
		s.sparkMapper.NewEntity(&pos, &vel, &life, &spark)
	}
}

// Update advances every effect by one frame and removes expired ones.
func (s *ShockwaveSystem) Update() {
	var expired []ecs.Entity

	rings := s.ringFilter.Query()
	for rings.Next() {
		_, life, ring := rings.Get()
		ring.Radius += ring.Speed
		life.Remaining--
		if life.Remaining <= 0 {
			expired = append(expired, rings.Entity())
		}
	}
	for _, e := range expired {
		s.ringMapper.Remove(e)
	}

	expired = expired[:0]
	sparks := s.sparkFilter.Query()
	for sparks.Next() {
		pos, vel, life, spark := sparks.Get()
		pos.X += vel.X
		pos.Y += vel.Y
		pos.Z += vel.Z
		vel.X *= spark.Drag
		vel.Y *= spark.Drag
		vel.Z *= spark.Drag
		life.Remaining--
		if life.Remaining <= 0 {
			expired = append(expired, sparks.Entity())
		}
	}
	for _, e := range expired {
		s.sparkMapper.Remove(e)
	}
}

// EachRing calls fn for every live ring with its remaining life fraction.
func (s *ShockwaveSystem) EachRing(fn func(pos components.Position, ring components.Ring, alpha float32)) {
	q := s.ringFilter.Query()
	for q.Next() {
		pos, life, ring := q.Get()
		fn(*pos, *ring, life.Fraction())
	}
}

// EachSpark calls fn for every live spark with its remaining life fraction.
func (s *ShockwaveSystem) EachSpark(fn func(pos components.Position, alpha float32)) {
	q := s.sparkFilter.Query()
	for q.Next() {
		pos, _, life, _ := q.Get()
		fn(*pos, life.Fraction())
	}
}

// Counts returns the number of live rings and sparks.
func (s *ShockwaveSystem) Counts() (rings, sparks int) {
	q := s.ringFilter.Query()
	for q.Next() {
		rings++
	}
	qs := s.sparkFilter.Query()
	for qs.Next() {
		sparks++
	}
	return rings, sparks
}
