package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/oracle/components"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedCollector(window int, budget time.Duration) (*PerfCollector, *fakeClock) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(window, budget)
	pc.now = clk.now
	return pc, clk
}

// step runs one step whose phases take the given durations.
func step(pc *PerfCollector, clk *fakeClock, mode components.Mode, d map[Phase]time.Duration) {
	pc.BeginStep(mode)
	for ph := Phase(0); ph < numPhases; ph++ {
		pc.StartPhase(ph)
		clk.advance(d[ph])
	}
	pc.EndStep()
}

func TestPerfPhaseShares(t *testing.T) {
	pc, clk := newClockedCollector(10, 16*time.Millisecond)
	for i := 0; i < 5; i++ {
		step(pc, clk, components.ModeEvoca, map[Phase]time.Duration{
			PhaseHand:  100 * time.Microsecond,
			PhaseField: 900 * time.Microsecond,
		})
	}

	s := pc.Stats()
	if s.Steps != 5 {
		t.Errorf("steps = %d, want 5", s.Steps)
	}
	if s.AvgStep != time.Millisecond {
		t.Errorf("avg step = %v, want 1ms", s.AvgStep)
	}
	if s.PhaseAvg[PhaseField] != 900*time.Microsecond {
		t.Errorf("field avg = %v, want 900µs", s.PhaseAvg[PhaseField])
	}
	tests := []struct {
		phase Phase
		want  float64
	}{
		{PhaseHand, 10},
		{PhaseField, 90},
		{PhaseCharge, 0},
		{PhaseTelemetry, 0},
	}
	for _, tt := range tests {
		if got := s.PhasePct[tt.phase]; got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("%s share = %v%%, want %v%%", tt.phase, got, tt.want)
		}
	}
	if s.BudgetPct < 6.24 || s.BudgetPct > 6.26 {
		t.Errorf("budget share = %v%%, want 6.25%%", s.BudgetPct)
	}
}

func TestPerfPerModeCost(t *testing.T) {
	pc, clk := newClockedCollector(10, 0)
	for i := 0; i < 3; i++ {
		step(pc, clk, components.ModeFuture, map[Phase]time.Duration{PhaseField: 200 * time.Microsecond})
	}
	step(pc, clk, components.ModeEvoca, map[Phase]time.Duration{
		PhaseHand:  300 * time.Microsecond,
		PhaseField: 500 * time.Microsecond,
	})

	s := pc.Stats()
	if got := s.ModeAvg[components.ModeFuture]; got != 200*time.Microsecond {
		t.Errorf("FUTURE step = %v, want 200µs", got)
	}
	if got := s.ModeAvg[components.ModeEvoca]; got != 800*time.Microsecond {
		t.Errorf("EVOCA step = %v, want 800µs", got)
	}
	if _, ok := s.ModeAvg[components.ModePast]; ok {
		t.Error("PAST reported without any PAST step")
	}
	if s.MinStep != 200*time.Microsecond || s.MaxStep != 800*time.Microsecond {
		t.Errorf("min/max = %v/%v, want 200µs/800µs", s.MinStep, s.MaxStep)
	}
	if s.BudgetPct != 0 {
		t.Errorf("budget share without a budget = %v", s.BudgetPct)
	}

	row := s.ToCSV(42)
	if row.FutureStepUS != 200 || row.EvocaStepUS != 800 || row.PastStepUS != 0 {
		t.Errorf("csv per-mode = %d/%d/%d", row.FutureStepUS, row.PastStepUS, row.EvocaStepUS)
	}
}

func TestPerfRingKeepsLastWindow(t *testing.T) {
	pc, clk := newClockedCollector(3, 0)
	for i := 1; i <= 5; i++ {
		step(pc, clk, components.ModeFuture, map[Phase]time.Duration{PhaseField: time.Duration(i) * time.Millisecond})
	}

	s := pc.Stats()
	if s.Steps != 3 {
		t.Fatalf("steps = %d, want 3", s.Steps)
	}
	// Steps 3, 4 and 5 remain
	if s.AvgStep != 4*time.Millisecond || s.MinStep != 3*time.Millisecond {
		t.Errorf("avg/min = %v/%v, want 4ms/3ms", s.AvgStep, s.MinStep)
	}
	if pc.Last() != 5*time.Millisecond {
		t.Errorf("last = %v, want 5ms", pc.Last())
	}
}

func TestPerfEmpty(t *testing.T) {
	pc := NewPerfCollector(0, time.Millisecond)
	s := pc.Stats()
	if s.Steps != 0 || s.AvgStep != 0 || s.BudgetPct != 0 {
		t.Errorf("empty stats = %+v", s)
	}
	if s.ModeAvg == nil {
		t.Error("expected non-nil ModeAvg")
	}
	if pc.Last() != 0 {
		t.Errorf("last on empty = %v", pc.Last())
	}
	if len(pc.ring) != 60 {
		t.Errorf("default window = %d, want 60", len(pc.ring))
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseField.String() != "field" || numPhases.String() != "unknown" {
		t.Errorf("names = %q, %q", PhaseField, numPhases)
	}
}
