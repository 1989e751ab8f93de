package field

import "github.com/pthm-cable/oracle/config"

// Params holds every constant the field update uses.
type Params struct {
	Count     int
	SpaceSize float64

	// Morph (FUTURE/PAST)
	LerpFactor      float32
	JitterAmplitude float32
	NeutralColor    float32
	RotationSpeed   float32

	// Physics (EVOCA)
	ChargeEpsilon    float32
	Attraction       float32
	Turbulence       float32
	CoreRadius       float32
	CoreStrength     float32
	ChargedDamping   float32
	ChargedColorRate float32
	ChargedColorLow  [3]float32
	ChargedColorHigh [3]float32
	ExplodeMinSpeed  float32
	ExplodeMaxSpeed  float32
	HomeStrength     float32
	FlowStrength     float32
	IdleDamping      float32
	IdleColorRate    float32
	BaseColor        float32

	// Visible world extent of the z=0 plane, used to project the hand.
	ViewWidth  float32
	ViewHeight float32
}

// DefaultParams returns the parameters of the embedded default config.
func DefaultParams() Params {
	return ParamsFromConfig(config.Defaults())
}

// ParamsFromConfig converts the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	ph := cfg.Physics
	return Params{
		Count:     cfg.Field.Count,
		SpaceSize: cfg.Field.SpaceSize,

		LerpFactor:      float32(cfg.Morph.LerpFactor),
		JitterAmplitude: float32(cfg.Morph.JitterAmplitude),
		NeutralColor:    float32(cfg.Morph.NeutralColor),
		RotationSpeed:   float32(cfg.Morph.RotationSpeed),

		ChargeEpsilon:    float32(ph.ChargeEpsilon),
		Attraction:       float32(ph.Attraction),
		Turbulence:       float32(ph.Turbulence),
		CoreRadius:       float32(ph.CoreRadius),
		CoreStrength:     float32(ph.CoreStrength),
		ChargedDamping:   float32(ph.ChargedDamping),
		ChargedColorRate: float32(ph.ChargedColorRate),
		ChargedColorLow:  vec3f(ph.ChargedColorLow),
		ChargedColorHigh: vec3f(ph.ChargedColorHigh),
		ExplodeMinSpeed:  float32(ph.ExplodeMinSpeed),
		ExplodeMaxSpeed:  float32(ph.ExplodeMaxSpeed),
		HomeStrength:     float32(ph.HomeStrength),
		FlowStrength:     float32(ph.FlowStrength),
		IdleDamping:      float32(ph.IdleDamping),
		IdleColorRate:    float32(ph.IdleColorRate),
		BaseColor:        float32(ph.BaseColor),

		ViewWidth:  float32(cfg.Derived.ViewWidth),
		ViewHeight: float32(cfg.Derived.ViewHeight),
	}
}

func vec3f(v [3]float64) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}
