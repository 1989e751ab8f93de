package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/driver"
	"github.com/pthm-cable/oracle/gesture"
)

// Scenario is the scripted gesture every evaluation plays: rest, hold a
// fist at the center, open it, then leave the frame.
type Scenario struct {
	RestFrames    int
	ChargeFrames  int
	SpreadFrames  int // frames after the release before the spread is measured
	RecoverFrames int
}

// DefaultScenario is about twelve seconds at 60 fps.
var DefaultScenario = Scenario{
	RestFrames:    60,
	ChargeFrames:  60,
	SpreadFrames:  45,
	RecoverFrames: 540,
}

// Frames returns the scenario length.
func (s Scenario) Frames() int {
	return s.RestFrames + s.ChargeFrames + 1 + s.SpreadFrames + s.RecoverFrames
}

// Measurement is what one run of the scenario observed.
type Measurement struct {
	Condensed float64 // mean distance to the hand at the end of the hold
	Released  float64 // charge let go by the open hand
	Spread    float64 // mean distance to the hand SpreadFrames after release
	HomeDist  float64 // mean distance from home at the end
	Exploded  bool
}

// scriptCamera publishes one fresh sample per frame from a fixed script.
type scriptCamera struct {
	hands []components.HandSample
	frame int
	seq   uint64
}

func (c *scriptCamera) Start(ctx context.Context) error { return nil }
func (c *scriptCamera) Stop()                           {}
func (c *scriptCamera) Status() capture.Status          { return capture.StatusActive }

func (c *scriptCamera) Latest() capture.Sample {
	hand := components.NoHand
	if c.frame < len(c.hands) {
		hand = c.hands[c.frame]
	}
	return capture.Sample{Hand: hand, Seq: c.seq}
}

// advance moves the script to the next frame.
func (c *scriptCamera) advance() {
	c.frame++
	c.seq++
}

func (s Scenario) script(multiplier float64) []components.HandSample {
	fist := gesture.Sample(gesture.Fist(0.5, 0.5, 0.1), multiplier)
	open := gesture.Sample(gesture.OpenHand(0.5, 0.5, 0.1), multiplier)

	hands := make([]components.HandSample, 0, s.Frames())
	for i := 0; i < s.RestFrames; i++ {
		hands = append(hands, components.NoHand)
	}
	for i := 0; i < s.ChargeFrames; i++ {
		hands = append(hands, fist)
	}
	hands = append(hands, open)
	for i := 0; i < s.SpreadFrames+s.RecoverFrames; i++ {
		hands = append(hands, components.NoHand)
	}
	return hands
}

// Run plays the scenario against a fresh driver in EVOCA.
func (s Scenario) Run(cfg *config.Config, seed int64) (Measurement, error) {
	var m Measurement
	cam := &scriptCamera{hands: s.script(cfg.Gesture.CurlMultiplier), seq: 1}

	d, err := driver.New(driver.Options{
		Config: cfg,
		Seed:   seed,
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Camera: cam,
	})
	if err != nil {
		return m, err
	}
	defer d.Close()
	d.SetMode(components.ModeEvoca)

	f := d.Field()
	center, _ := f.HandLocal(0.5, 0.5, true)
	distToHand := func() float64 {
		return f.MeanDistanceTo(center.X(), center.Y(), center.Z())
	}

	release := s.RestFrames + s.ChargeFrames
	for i := 0; i < s.Frames(); i++ {
		ev := d.Step()
		cam.advance()

		switch {
		case i == release-1:
			m.Condensed = distToHand()
		case i == release:
			m.Exploded = ev.Explode
			m.Released = ev.Released
		case i == release+s.SpreadFrames:
			m.Spread = distToHand()
		}
	}
	m.HomeDist = f.Stats().MeanHomeDist
	return m, nil
}
