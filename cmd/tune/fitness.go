package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/oracle/config"
)

// Targets is the look the tuner aims for, in world units.
type Targets struct {
	Condensed float64 // mean distance to the fist after a full hold
	Spread    float64 // mean distance to the fist shortly after release
	HomeDist  float64 // tolerated mean distance from home after recovery
}

// DefaultTargets pulls the cloud to a tight ball, throws it past the
// RANDOM volume and settles it back within a unit of home.
var DefaultTargets = Targets{Condensed: 2.5, Spread: 14, HomeDist: 1}

// FitnessEvaluator runs the scenario headless and scores the result.
type FitnessEvaluator struct {
	params   *ParamVector
	scenario Scenario
	targets  Targets
	seeds    []int64
	base     *config.Config

	mu        sync.Mutex
	lastScore Measurement
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, scenario Scenario, targets Targets, seeds []int64, base *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		scenario: scenario,
		targets:  targets,
		seeds:    seeds,
		base:     base,
	}
}

// LastMeasurement returns the seed-averaged measurement of the most recent
// evaluation.
func (fe *FitnessEvaluator) LastMeasurement() Measurement {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]Measurement, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.scenario.Run(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var avg Measurement
	var total float64
	for i, m := range results {
		if errs[i] != nil {
			return math.Inf(1)
		}
		total += fe.Score(m)
		avg.Condensed += m.Condensed
		avg.Spread += m.Spread
		avg.HomeDist += m.HomeDist
		avg.Released += m.Released
	}

	n := float64(len(fe.seeds))
	avg.Condensed /= n
	avg.Spread /= n
	avg.HomeDist /= n
	avg.Released /= n
	avg.Exploded = true
	fe.mu.Lock()
	fe.lastScore = avg
	fe.mu.Unlock()

	return total / n
}

// Score is the relative squared miss on each target. A run that never
// exploded scores 100.
func (fe *FitnessEvaluator) Score(m Measurement) float64 {
	if !m.Exploded {
		return 100
	}
	t := fe.targets
	score := sq((m.Condensed-t.Condensed)/t.Condensed) + sq((m.Spread-t.Spread)/t.Spread)
	if m.HomeDist > t.HomeDist {
		score += sq((m.HomeDist - t.HomeDist) / t.HomeDist)
	}
	return score
}

// copyConfig gives each evaluation its own config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.base
	return &cfg
}

func sq(v float64) float64 { return v * v }
