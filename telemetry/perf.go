package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/oracle/components"
)

// Phase is one stage of a driver step, in execution order.
type Phase uint8

const (
	PhaseHand Phase = iota
	PhaseCharge
	PhaseField
	PhaseEffects
	PhaseAudio
	PhaseTelemetry

	numPhases
)

var phaseNames = [numPhases]string{"hand", "charge", "field", "effects", "audio", "telemetry"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// frameSample is one step: which mode ran it, and where the time went.
type frameSample struct {
	mode   components.Mode
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times driver steps over a ring of the last windowSize
// steps. The frame budget is the display interval the step has to fit in.
type PerfCollector struct {
	now    func() time.Time
	budget time.Duration

	ring  []frameSample
	next  int
	count int

	cur        frameSample
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector keeps windowSize steps (60 when < 1) measured against
// budget.
func NewPerfCollector(windowSize int, budget time.Duration) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:    time.Now,
		budget: budget,
		ring:   make([]frameSample, windowSize),
	}
}

// BeginStep starts timing a step run in mode.
func (p *PerfCollector) BeginStep(mode components.Mode) {
	p.stepStart = p.now()
	p.cur = frameSample{mode: mode}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	t := p.now()
	p.closePhase(t)
	p.phase, p.phaseStart, p.inPhase = ph, t, true
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.cur.phases[p.phase] += t.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndStep closes the step and stores it in the ring.
func (p *PerfCollector) EndStep() {
	t := p.now()
	p.closePhase(t)
	p.cur.total = t.Sub(p.stepStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// Last returns the duration of the most recent step.
func (p *PerfCollector) Last() time.Duration {
	if p.count == 0 {
		return 0
	}
	return p.ring[(p.next+len(p.ring)-1)%len(p.ring)].total
}

// PerfStats summarizes the window.
type PerfStats struct {
	Steps   int
	AvgStep time.Duration
	MinStep time.Duration
	MaxStep time.Duration

	// BudgetPct is AvgStep as a share of the frame budget; 0 without a budget.
	BudgetPct float64

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // share of AvgStep

	// ModeAvg is the mean step cost per mode, for modes seen in the window.
	ModeAvg map[components.Mode]time.Duration
}

// Stats aggregates the steps currently in the ring.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Steps: p.count, ModeAvg: make(map[components.Mode]time.Duration)}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	modeSum := make(map[components.Mode]time.Duration)
	modeN := make(map[components.Mode]int)

	for i, f := range p.ring[:p.count] {
		total += f.total
		if i == 0 || f.total < s.MinStep {
			s.MinStep = f.total
		}
		s.MaxStep = max(s.MaxStep, f.total)
		for ph, d := range f.phases {
			phaseSum[ph] += d
		}
		modeSum[f.mode] += f.total
		modeN[f.mode]++
	}

	n := time.Duration(p.count)
	s.AvgStep = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if total > 0 {
			s.PhasePct[ph] = float64(phaseSum[ph]) / float64(total) * 100
		}
	}
	for m, sum := range modeSum {
		s.ModeAvg[m] = sum / time.Duration(modeN[m])
	}
	if p.budget > 0 {
		s.BudgetPct = float64(s.AvgStep) / float64(p.budget) * 100
	}
	return s
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("budget_pct", round1(s.BudgetPct)),
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", round1(pct)))
		}
	}
	for _, m := range components.Modes {
		if d, ok := s.ModeAvg[m]; ok {
			attrs = append(attrs, slog.Int64(m.String()+"_step_us", d.Microseconds()))
		}
	}
	return slog.GroupValue(attrs...)
}

func round1(v float64) float64 {
	return float64(int(v*10)) / 10
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    uint64  `csv:"window_end"`
	Steps        int     `csv:"steps"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	MinStepUS    int64   `csv:"min_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	BudgetPct    float64 `csv:"budget_pct"`
	HandPct      float64 `csv:"hand_pct"`
	ChargePct    float64 `csv:"charge_pct"`
	FieldPct     float64 `csv:"field_pct"`
	EffectsPct   float64 `csv:"effects_pct"`
	AudioPct     float64 `csv:"audio_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
	FutureStepUS int64   `csv:"future_step_us"`
	PastStepUS   int64   `csv:"past_step_us"`
	EvocaStepUS  int64   `csv:"evoca_step_us"`
}

// ToCSV flattens the stats. Modes absent from the window read 0.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		Steps:        s.Steps,
		AvgStepUS:    s.AvgStep.Microseconds(),
		MinStepUS:    s.MinStep.Microseconds(),
		MaxStepUS:    s.MaxStep.Microseconds(),
		BudgetPct:    s.BudgetPct,
		HandPct:      s.PhasePct[PhaseHand],
		ChargePct:    s.PhasePct[PhaseCharge],
		FieldPct:     s.PhasePct[PhaseField],
		EffectsPct:   s.PhasePct[PhaseEffects],
		AudioPct:     s.PhasePct[PhaseAudio],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
		FutureStepUS: s.ModeAvg[components.ModeFuture].Microseconds(),
		PastStepUS:   s.ModeAvg[components.ModePast].Microseconds(),
		EvocaStepUS:  s.ModeAvg[components.ModeEvoca].Microseconds(),
	}
}
