// Package main tunes the EVOCA physics with CMA-ES so a scripted
// hold-and-release condenses, bursts and settles the way the targets ask.
package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/oracle/config"
)

type options struct {
	configPath string
	seeds      int
	maxEvals   int
	population int
	outputDir  string
	count      int
	targets    Targets
}

func main() {
	opts := options{targets: DefaultTargets}
	cmd := &cobra.Command{
		Use:          "tune",
		Short:        "Tune EVOCA physics with CMA-ES",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	fl.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	fl.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	fl.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	fl.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	fl.IntVar(&opts.count, "count", 1500, "Particles per run (0 = use config)")
	fl.Float64Var(&opts.targets.Condensed, "target-condensed", DefaultTargets.Condensed, "Mean distance to the fist after the hold")
	fl.Float64Var(&opts.targets.Spread, "target-spread", DefaultTargets.Spread, "Mean distance to the fist after the burst")
	fl.Float64Var(&opts.targets.HomeDist, "target-home", DefaultTargets.HomeDist, "Tolerated mean distance from home after recovery")
	_ = cmd.MarkFlagRequired("output")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// formatDuration formats a duration as HhMMmSSs or MmSSs for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func run(opts options) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.count > 0 {
		base.Field.Count = opts.count
	}

	params := NewParamVector()
	evalSeeds := make([]int64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, DefaultScenario, opts.targets, evalSeeds, base)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(base))

	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.maxEvals,
		Concurrent:      0,
	}

	logFile, err := os.Create(filepath.Join(opts.outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "condensed", "spread", "home_dist"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := logWriter.Write(header); err != nil {
		return err
	}

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			m := evaluator.LastMeasurement()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			row := []string{
				strconv.Itoa(evalCount),
				fmt.Sprintf("%.6f", fitness),
				fmt.Sprintf("%.4f", m.Condensed),
				fmt.Sprintf("%.4f", m.Spread),
				fmt.Sprintf("%.4f", m.HomeDist),
			}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			_ = logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			remaining := time.Duration(opts.maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: fitness=%.4f condensed=%.2f spread=%.2f home=%.2f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, opts.maxEvals, fitness, m.Condensed, m.Spread, m.HomeDist, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	logger.Info("starting CMA-ES",
		"params", dim,
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"frames_per_run", DefaultScenario.Frames(),
	)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		logger.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluation completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n\nBest parameters:\n", bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(bestCfg, bestParams)
	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", out)
	return nil
}
