package main

import (
	"github.com/pthm-cable/oracle/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound

	get func(*config.PhysicsConfig) *float64
}

// ParamVector holds the set of tunable EVOCA physics parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Charging
			{Name: "attraction", Path: "physics.attraction", Min: 0.01, Max: 0.3,
				get: func(p *config.PhysicsConfig) *float64 { return &p.Attraction }},
			{Name: "turbulence", Path: "physics.turbulence", Min: 0, Max: 0.6,
				get: func(p *config.PhysicsConfig) *float64 { return &p.Turbulence }},
			{Name: "core_radius", Path: "physics.core_radius", Min: 0.3, Max: 3,
				get: func(p *config.PhysicsConfig) *float64 { return &p.CoreRadius }},
			{Name: "core_strength", Path: "physics.core_strength", Min: 0.01, Max: 0.5,
				get: func(p *config.PhysicsConfig) *float64 { return &p.CoreStrength }},
			{Name: "charged_damping", Path: "physics.charged_damping", Min: 0.7, Max: 0.99,
				get: func(p *config.PhysicsConfig) *float64 { return &p.ChargedDamping }},
			// Explosion
			{Name: "explode_min_speed", Path: "physics.explode_min_speed", Min: 0.5, Max: 6,
				get: func(p *config.PhysicsConfig) *float64 { return &p.ExplodeMinSpeed }},
			{Name: "explode_max_speed", Path: "physics.explode_max_speed", Min: 1, Max: 10,
				get: func(p *config.PhysicsConfig) *float64 { return &p.ExplodeMaxSpeed }},
			// Recovery
			{Name: "home_strength", Path: "physics.home_strength", Min: 0.0005, Max: 0.02,
				get: func(p *config.PhysicsConfig) *float64 { return &p.HomeStrength }},
			{Name: "idle_damping", Path: "physics.idle_damping", Min: 0.7, Max: 0.98,
				get: func(p *config.PhysicsConfig) *float64 { return &p.IdleDamping }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg. The explosion speed range
// is reordered when min exceeds max.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].get(&cfg.Physics) = v
	}
	if cfg.Physics.ExplodeMinSpeed > cfg.Physics.ExplodeMaxSpeed {
		cfg.Physics.ExplodeMinSpeed, cfg.Physics.ExplodeMaxSpeed = cfg.Physics.ExplodeMaxSpeed, cfg.Physics.ExplodeMinSpeed
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.get(&cfg.Physics)
	}
	return v
}
