package driver

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/oracle"
	"github.com/pthm-cable/oracle/shape"
)

// stubCamera publishes whatever the test pushes.
type stubCamera struct {
	mu     sync.Mutex
	sample capture.Sample
	status capture.Status
	starts int
	stops  int
}

func (c *stubCamera) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == capture.StatusActive {
		return capture.ErrAlreadyActive
	}
	c.starts++
	c.status = capture.StatusActive
	return nil
}

func (c *stubCamera) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	c.status = capture.StatusIdle
}

func (c *stubCamera) Latest() capture.Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sample
}

func (c *stubCamera) Status() capture.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *stubCamera) push(g components.Gesture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sample = capture.Sample{
		Hand: components.HandSample{X: 0.5, Y: 0.5, Detected: true, Gesture: g},
		Seq:  c.sample.Seq + 1,
	}
}

// stubOracle answers with resp once release is closed.
type stubOracle struct {
	resp    oracle.Response
	release chan struct{}

	mu    sync.Mutex
	calls []string
}

func newStubOracle(resp oracle.Response) *stubOracle {
	return &stubOracle{resp: resp, release: make(chan struct{})}
}

func (o *stubOracle) Consult(ctx context.Context, text string, mode components.Mode) oracle.Response {
	o.mu.Lock()
	o.calls = append(o.calls, text)
	o.mu.Unlock()
	select {
	case <-o.release:
		return o.resp
	case <-ctx.Done():
		return oracle.Fallback
	}
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, req oracle.Request) (string, error) {
	return "", errors.New("network unreachable")
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Field.Count = 400
	return cfg
}

func newTestDriver(t *testing.T, opts Options) *Driver {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig()
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	d, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// waitAnswer steps until the pending consult has been applied.
func waitAnswer(t *testing.T, d *Driver) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for d.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("consult never completed")
		}
		d.Step()
		time.Sleep(time.Millisecond)
	}
}

func colorDistance(d *Driver, to [3]float64) float64 {
	col := d.Field().Colors()
	var sum float64
	for i := 0; i < len(col); i += 3 {
		dr := float64(col[i]) - to[0]
		dg := float64(col[i+1]) - to[1]
		db := float64(col[i+2]) - to[2]
		sum += math.Sqrt(dr*dr + dg*dg + db*db)
	}
	return sum / float64(len(col)/3)
}

func TestEvocaChargeAndExplode(t *testing.T) {
	cam := &stubCamera{}
	d := newTestDriver(t, Options{Camera: cam})
	defer d.Close()

	d.SetMode(components.ModeEvoca)
	if cam.starts != 1 {
		t.Fatalf("camera starts = %d, want 1", cam.starts)
	}

	high := d.Config().Physics.ChargedColorHigh
	before := colorDistance(d, high)

	for i := 0; i < 40; i++ {
		cam.push(components.GestureClosedFist)
		ev := d.Step()
		if ev.Explode {
			t.Fatalf("frame %d: fist exploded", i)
		}
	}
	if d.Charge() != 1 {
		t.Errorf("charge after 40 fist frames = %v, want 1", d.Charge())
	}
	if after := colorDistance(d, high); after >= before {
		t.Errorf("colors did not trend toward charged hue: %v -> %v", before, after)
	}

	cam.push(components.GestureOpenHand)
	ev := d.Step()
	if !ev.Explode {
		t.Fatal("open hand at full charge did not explode")
	}
	p := d.Field().Params()
	vel := d.Field().Velocities()
	for i := 0; i < len(vel); i += 3 {
		v := float32(math.Sqrt(float64(vel[i]*vel[i] + vel[i+1]*vel[i+1] + vel[i+2]*vel[i+2])))
		if v < p.ExplodeMinSpeed-1e-4 || v > p.ExplodeMaxSpeed+1e-4 {
			t.Fatalf("particle %d speed %v outside explode range", i/3, v)
		}
	}
	if rings, sparks := d.Shockwaves().Counts(); rings != 1 || sparks == 0 {
		t.Errorf("shockwave entities = %d rings, %d sparks; want 1 ring and sparks", rings, sparks)
	}

	// No fresh sample: nothing is folded twice
	ev = d.Step()
	if ev.Explode || ev.Charge != 0 {
		t.Errorf("frame after explode = %+v, want zero charge and no explosion", ev)
	}
}

func TestStaleSampleFoldedOnce(t *testing.T) {
	cam := &stubCamera{}
	d := newTestDriver(t, Options{Camera: cam})
	defer d.Close()
	d.SetMode(components.ModeEvoca)

	cam.push(components.GestureClosedFist)
	d.Step()
	first := d.Charge()
	for i := 0; i < 10; i++ {
		d.Step()
	}
	if d.Charge() != first {
		t.Errorf("charge moved on stale samples: %v -> %v", first, d.Charge())
	}
}

func TestHandIgnoredOutsideEvoca(t *testing.T) {
	cam := &stubCamera{}
	d := newTestDriver(t, Options{Camera: cam})
	defer d.Close()

	cam.push(components.GestureClosedFist)
	for i := 0; i < 5; i++ {
		d.Step()
	}
	if d.Charge() != 0 || d.Hand().Detected {
		t.Errorf("FUTURE mode used the hand: charge %v, hand %+v", d.Charge(), d.Hand())
	}
	if cam.starts != 0 {
		t.Errorf("camera started outside EVOCA")
	}
}

func TestFutureSubmitSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	stub := newStubOracle(oracle.Response{Keyword: "ARMONIA", Shape: shape.Torus, Message: "ok", Source: oracle.SourceModel})
	d := newTestDriver(t, Options{Oracle: stub})
	defer d.Close()

	for i := 0; i < 60; i++ {
		d.Step()
	}
	snapshot := append([]float32(nil), d.Field().Positions()...)

	if !d.Submit("pace") {
		t.Fatal("submit rejected")
	}
	if !d.Loading() || d.TargetShape() != shape.Random {
		t.Errorf("after submit: loading=%v target=%v, want loading and RANDOM", d.Loading(), d.TargetShape())
	}
	if d.Submit("ancora") {
		t.Error("second submit accepted while loading")
	}

	// Frames keep running while the answer is pending
	for i := 0; i < 5; i++ {
		d.Step()
	}
	close(stub.release)
	waitAnswer(t, d)

	msg, ok := d.Message()
	if !ok || msg.Keyword != "ARMONIA" {
		t.Fatalf("message = %+v, %v", msg, ok)
	}
	if d.TargetShape() != shape.Torus {
		t.Fatalf("target = %v, want TORUS", d.TargetShape())
	}

	d.Step()
	if d.Field().Shape() != shape.Torus {
		t.Fatalf("field shape = %v, want TORUS", d.Field().Shape())
	}
	start := d.Field().Stats().MeanTargetDist
	for i := 0; i < 120; i++ {
		d.Step()
	}
	if end := d.Field().Stats().MeanTargetDist; end >= start {
		t.Errorf("particles not approaching TORUS: %v -> %v", start, end)
	}

	var moved float64
	pos := d.Field().Positions()
	for i := range pos {
		moved += math.Abs(float64(pos[i] - snapshot[i]))
	}
	if moved == 0 {
		t.Error("particles never left their pre-submit positions")
	}
	if len(stub.calls) != 1 || stub.calls[0] != "pace" {
		t.Errorf("oracle calls = %v, want [pace]", stub.calls)
	}
}

func TestFutureSubmitFailureFallsBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := oracle.New(failingGenerator{}, time.Second, nil)
	d := newTestDriver(t, Options{Oracle: client})
	defer d.Close()

	if !d.Submit("pace") {
		t.Fatal("submit rejected")
	}
	waitAnswer(t, d)

	msg, _ := d.Message()
	if msg.Source != oracle.SourceFallback || d.TargetShape() != oracle.Fallback.Shape {
		t.Errorf("message = %+v target = %v, want fallback", msg, d.TargetShape())
	}
	frame := d.Frame()
	for i := 0; i < 10; i++ {
		d.Step()
	}
	if d.Frame() != frame+10 {
		t.Errorf("frame loop stalled at %d", d.Frame())
	}
}

func TestSubmitIgnored(t *testing.T) {
	stub := newStubOracle(oracle.Mock)
	d := newTestDriver(t, Options{Oracle: stub})
	defer d.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		if d.Submit(text) {
			t.Errorf("blank submit %q accepted", text)
		}
	}

	d.SetMode(components.ModeEvoca)
	if d.Submit("pace") {
		t.Error("submit accepted in EVOCA")
	}
}

func TestSameAnswerResamplesTarget(t *testing.T) {
	defer goleak.VerifyNone(t)

	stub := newStubOracle(oracle.Response{Keyword: "ARMONIA", Shape: shape.Torus, Message: "ok", Source: oracle.SourceModel})
	close(stub.release)
	d := newTestDriver(t, Options{Oracle: stub})
	defer d.Close()

	d.Submit("pace")
	waitAnswer(t, d)
	d.Step()
	first := append([]float32(nil), d.Field().Target()...)

	// The second answer lands before the field ever steps toward RANDOM
	d.Submit("ancora")
	deadline := time.Now().Add(time.Second)
	for len(d.consults) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	d.Step()
	if d.Loading() || d.Field().Shape() != shape.Torus {
		t.Fatalf("loading=%v shape=%v, want answered TORUS", d.Loading(), d.Field().Shape())
	}

	for i, v := range d.Field().Target() {
		if v != first[i] {
			return
		}
	}
	t.Error("repeated TORUS answer reused the previous target sample")
}

func TestModeChangeResets(t *testing.T) {
	defer goleak.VerifyNone(t)

	cam := &stubCamera{}
	stub := newStubOracle(oracle.Response{Keyword: "LATE", Shape: shape.Cube, Message: "late"})
	d := newTestDriver(t, Options{Camera: cam, Oracle: stub})
	defer d.Close()

	d.Submit("pace")
	d.SetMode(components.ModePast)
	if d.Loading() {
		t.Error("loading survived mode change")
	}

	// The answer for FUTURE arrives after switching to PAST
	close(stub.release)
	deadline := time.Now().Add(time.Second)
	for len(d.consults) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	d.Step()
	if _, ok := d.Message(); ok {
		t.Error("late answer applied to a new mode")
	}
	if d.TargetShape() != shape.Random {
		t.Errorf("target = %v, want RANDOM", d.TargetShape())
	}

	positions := append([]float32(nil), d.Field().Positions()...)
	d.SetMode(components.ModeEvoca)
	d.SetMode(components.ModeEvoca) // no-op
	if cam.starts != 1 {
		t.Errorf("camera starts = %d, want 1", cam.starts)
	}
	for i, v := range d.Field().Positions() {
		if v != positions[i] {
			t.Fatal("mode change moved particles")
		}
	}

	cam.push(components.GestureClosedFist)
	d.Step()
	d.SetMode(components.ModeFuture)
	if cam.stops != 1 {
		t.Errorf("camera stops = %d, want 1", cam.stops)
	}
	if d.Charge() != 0 {
		t.Errorf("charge after leaving EVOCA = %v, want 0", d.Charge())
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = 0.5

	cam := &stubCamera{}
	d := newTestDriver(t, Options{Config: cfg, Camera: cam, OutputDir: dir})

	d.SetMode(components.ModeEvoca)
	for i := 0; i < 10; i++ {
		cam.push(components.GestureClosedFist)
		d.Step()
	}
	cam.push(components.GestureOpenHand)
	d.Step()
	for i := 0; i < 60; i++ {
		d.Step()
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"telemetry.csv", "perf.csv", "events.csv", "config.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
