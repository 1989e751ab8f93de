package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/oracle/config"
)

func testGridConfig() config.GridConfig {
	return config.GridConfig{
		Enabled:     true,
		Spacing:     0.5,
		Extent:      20,
		FloorY:      -5,
		CeilingY:    5,
		FloorKeep:   0.2,
		CeilingKeep: 0.1,
		NoiseScale:  0.35,
	}
}

func TestWallGridKeepFractions(t *testing.T) {
	g := NewWallGrid(testGridConfig(), 1)

	// 81x81 lattice
	total := 81.0 * 81.0
	if want := int(math.Round(0.2 * total)); len(g.Floor) != want {
		t.Errorf("floor points = %d, want %d", len(g.Floor), want)
	}
	if want := int(math.Round(0.1 * total)); len(g.Ceiling) != want {
		t.Errorf("ceiling points = %d, want %d", len(g.Ceiling), want)
	}
	if g.Len() != len(g.Floor)+len(g.Ceiling) {
		t.Errorf("Len = %d", g.Len())
	}
}

func TestWallGridPlanes(t *testing.T) {
	g := NewWallGrid(testGridConfig(), 1)

	for _, p := range g.Floor {
		if p.Y() != -5 {
			t.Fatalf("floor point %v off plane", p)
		}
		if math.Abs(float64(p.X())) > 20 || math.Abs(float64(p.Z())) > 20 {
			t.Fatalf("floor point %v outside extent", p)
		}
	}
	for _, p := range g.Ceiling {
		if p.Y() != 5 {
			t.Fatalf("ceiling point %v off plane", p)
		}
	}
}

func TestWallGridDeterministic(t *testing.T) {
	a := NewWallGrid(testGridConfig(), 7)
	b := NewWallGrid(testGridConfig(), 7)
	for i := range a.Floor {
		if a.Floor[i] != b.Floor[i] {
			t.Fatalf("point %d differs for the same seed", i)
		}
	}
}

func TestWallGridDisabled(t *testing.T) {
	cfg := testGridConfig()
	cfg.Enabled = false
	if g := NewWallGrid(cfg, 1); g.Len() != 0 {
		t.Errorf("disabled grid has %d points", g.Len())
	}

	cfg = testGridConfig()
	cfg.Spacing = 0
	if g := NewWallGrid(cfg, 1); g.Len() != 0 {
		t.Errorf("zero spacing grid has %d points", g.Len())
	}
}
