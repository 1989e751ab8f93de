package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// State at window end
	Mode   string `csv:"mode"`
	Shape  string `csv:"shape"`
	Camera string `csv:"camera"`

	// Charge over the window
	ChargeMean float64 `csv:"charge_mean"`
	ChargeMax  float64 `csv:"charge_max"`
	ChargeP90  float64 `csv:"charge_p90"`

	// Events during window
	Explosions int `csv:"explosions"`
	Consults   int `csv:"consults"`
	Fallbacks  int `csv:"fallbacks"`

	// Fraction of frames with a tracked hand
	HandCoverage float64 `csv:"hand_coverage"`

	// Particle motion sampled at window end
	SpeedMean      float64 `csv:"speed_mean"`
	SpeedStd       float64 `csv:"speed_std"`
	SpeedP50       float64 `csv:"speed_p50"`
	SpeedP90       float64 `csv:"speed_p90"`
	MeanTargetDist float64 `csv:"target_dist"`
	MeanHomeDist   float64 `csv:"home_dist"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std, P10, P50, P90, Max float64
}

// Summarize computes mean, standard deviation and quantiles. values is not
// modified.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var d Distribution
	d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		d.Std = 0
	}
	d.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	d.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	d.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	d.Max = sorted[len(sorted)-1]
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("mode", s.Mode),
		slog.String("shape", s.Shape),
		slog.String("camera", s.Camera),
		slog.Float64("charge_mean", s.ChargeMean),
		slog.Float64("charge_max", s.ChargeMax),
		slog.Float64("charge_p90", s.ChargeP90),
		slog.Int("explosions", s.Explosions),
		slog.Int("consults", s.Consults),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Float64("hand_coverage", s.HandCoverage),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("target_dist", s.MeanTargetDist),
		slog.Float64("home_dist", s.MeanHomeDist),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"mode", s.Mode,
		"shape", s.Shape,
		"camera", s.Camera,
		"charge_mean", s.ChargeMean,
		"charge_max", s.ChargeMax,
		"explosions", s.Explosions,
		"consults", s.Consults,
		"fallbacks", s.Fallbacks,
		"hand_coverage", s.HandCoverage,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"target_dist", s.MeanTargetDist,
		"home_dist", s.MeanHomeDist,
	)
}
