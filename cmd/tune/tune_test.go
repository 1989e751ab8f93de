package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/oracle/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()
	raw := pv.ExtractFromConfig(cfg)
	if len(raw) != pv.Dim() {
		t.Fatalf("extracted %d values, want %d", len(raw), pv.Dim())
	}
	for i, spec := range pv.Specs {
		if raw[i] < spec.Min || raw[i] > spec.Max {
			t.Errorf("default %s = %v outside [%v, %v]", spec.Name, raw[i], spec.Min, spec.Max)
		}
	}

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClampsAndOrders(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	values := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "attraction":
			values[i] = 99
		case "explode_min_speed":
			values[i] = 5
		case "explode_max_speed":
			values[i] = 2
		}
	}
	pv.ApplyToConfig(cfg, values)

	if cfg.Physics.Attraction != 0.3 {
		t.Errorf("attraction = %v, want clamped to 0.3", cfg.Physics.Attraction)
	}
	if cfg.Physics.ExplodeMinSpeed != 2 || cfg.Physics.ExplodeMaxSpeed != 5 {
		t.Errorf("explode range = [%v, %v], want [2, 5]", cfg.Physics.ExplodeMinSpeed, cfg.Physics.ExplodeMaxSpeed)
	}
}

func TestScenarioRun(t *testing.T) {
	cfg := config.Defaults()
	cfg.Field.Count = 300
	sc := Scenario{RestFrames: 5, ChargeFrames: 50, SpreadFrames: 20, RecoverFrames: 30}

	m, err := sc.Run(cfg, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Exploded {
		t.Fatal("the open hand did not explode")
	}
	if m.Released < 0.9 {
		t.Errorf("released charge = %v, want close to 1 after a long hold", m.Released)
	}
	if m.Spread <= m.Condensed {
		t.Errorf("spread %v not wider than condensed %v", m.Spread, m.Condensed)
	}
}

func TestScore(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), DefaultScenario, DefaultTargets, nil, config.Defaults())

	perfect := Measurement{Condensed: 2.5, Spread: 14, HomeDist: 0.5, Exploded: true}
	if s := fe.Score(perfect); s != 0 {
		t.Errorf("score on target = %v, want 0", s)
	}
	off := perfect
	off.Spread = 7
	if s := fe.Score(off); math.Abs(s-0.25) > 1e-9 {
		t.Errorf("score half spread = %v, want 0.25", s)
	}
	if s := fe.Score(Measurement{}); s != 100 {
		t.Errorf("score without explosion = %v, want 100", s)
	}
}
