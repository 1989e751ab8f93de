// Package driver advances the oracle scene one display frame at a time. It
// owns the particle field, the charge machine, the shockwave effects and the
// pending oracle consult, and it never blocks on the camera or the network.
package driver

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/oracle/audio"
	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/charge"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/field"
	"github.com/pthm-cable/oracle/oracle"
	"github.com/pthm-cable/oracle/shape"
	"github.com/pthm-cable/oracle/systems"
	"github.com/pthm-cable/oracle/telemetry"
)

// Camera is the hand source. *capture.Session implements it.
type Camera interface {
	Start(ctx context.Context) error
	Stop()
	Latest() capture.Sample
	Status() capture.Status
}

// Options configures a Driver.
type Options struct {
	Config *config.Config // nil uses config.Cfg()
	Seed   int64
	Logger *slog.Logger

	Camera Camera           // nil runs without hand input
	Oracle oracle.Consulter // nil answers every question with oracle.Mock
	Audio  *audio.Engine    // nil is silent

	LogStats       bool
	StatsWindowSec float64 // 0 uses config
	OutputDir      string  // empty disables CSV output
}

// consultResult carries a finished consult back to the frame loop.
type consultResult struct {
	gen     uint64
	resp    oracle.Response
	latency time.Duration
}

// Driver runs the frame loop state.
type Driver struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand

	ctx    context.Context
	cancel context.CancelFunc

	field      *field.Field
	charge     *charge.Machine
	world      *ecs.World
	shockwaves *systems.ShockwaveSystem

	camera Camera
	oracle oracle.Consulter
	audio  *audio.Engine

	// Frame state
	frame   uint64
	mode    components.Mode
	target  shape.ID
	hand    components.HandSample
	lastSeq uint64
	event   charge.Event

	// Oracle state
	message  *oracle.Response
	loading  bool
	consults chan consultResult
	gen      uint64 // bumped on mode change so late answers are dropped

	lastCamera capture.Status

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	speeds        []float64
}

// New creates a driver in FUTURE mode with a RANDOM target.
func New(opts Options) (*Driver, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	consulter := opts.Oracle
	if consulter == nil {
		consulter = oracle.New(nil, 0, logger)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	world := ecs.NewWorld()
	ctx, cancel := context.WithCancel(context.Background())

	d := &Driver{
		cfg:        cfg,
		logger:     logger,
		rng:        rng,
		ctx:        ctx,
		cancel:     cancel,
		field:      field.New(field.ParamsFromConfig(cfg), rng),
		charge:     charge.New(charge.ParamsFromConfig(cfg)),
		world:      world,
		shockwaves: systems.NewShockwaveSystem(world, systems.ShockwaveParamsFromConfig(cfg), rng),
		camera:     opts.Camera,
		oracle:     consulter,
		audio:      opts.Audio,
		mode:       components.ModeFuture,
		target:     shape.Random,
		hand:       components.NoHand,
		consults:   make(chan consultResult, 1),
		logStats:   opts.LogStats,
	}

	if err := d.initTelemetry(opts); err != nil {
		cancel()
		return nil, err
	}
	return d, nil
}

// Step runs exactly one frame and returns the charge event folded this frame.
func (d *Driver) Step() charge.Event {
	d.perf.BeginStep(d.mode)

	d.perf.StartPhase(telemetry.PhaseHand)
	d.pollConsult()
	fresh := d.readHand()

	d.perf.StartPhase(telemetry.PhaseCharge)
	d.event = charge.Event{Charge: d.charge.Charge()}
	if d.mode == components.ModeEvoca && fresh {
		d.event = d.charge.Step(d.hand)
	}

	d.perf.StartPhase(telemetry.PhaseField)
	d.field.Step(field.FrameInput{
		Mode:    d.mode,
		Shape:   d.target,
		Hand:    d.hand,
		Charge:  d.event.Charge,
		Explode: d.event.Explode,
		Time:    float64(d.frame) * d.cfg.Derived.DT,
	})

	d.perf.StartPhase(telemetry.PhaseEffects)
	if d.event.Explode {
		d.spawnShockwave()
	}
	d.shockwaves.Update()

	d.perf.StartPhase(telemetry.PhaseAudio)
	d.audio.SetCharge(d.event.Charge)
	if d.event.Explode {
		d.audio.Explode()
	}

	d.perf.StartPhase(telemetry.PhaseTelemetry)
	d.frame++
	d.recordFrame()

	d.perf.EndStep()
	return d.event
}

// readHand folds the camera's newest sample in. It reports whether the
// sample was published since the last frame.
func (d *Driver) readHand() bool {
	if d.camera == nil || d.mode != components.ModeEvoca {
		d.hand = components.NoHand
		return false
	}

	if st := d.camera.Status(); st != d.lastCamera {
		d.lastCamera = st
		d.writeEvent(telemetry.NewCameraEvent(d.frame, st.String()))
	}

	s := d.camera.Latest()
	d.hand = s.Hand
	if s.Seq == d.lastSeq {
		return false
	}
	d.lastSeq = s.Seq
	return true
}

// spawnShockwave places a ring at the hand, or at the center without one.
func (d *Driver) spawnShockwave() {
	p, ok := d.field.HandLocal(d.hand.X, d.hand.Y, d.hand.Detected)
	if !ok {
		d.shockwaves.Spawn(0, 0, 0)
		return
	}
	d.shockwaves.Spawn(p.X(), p.Y(), p.Z())
}

// Close stops the camera, abandons any consult in flight and flushes output.
func (d *Driver) Close() error {
	d.cancel()
	if d.camera != nil {
		d.camera.Stop()
	}
	d.audio.Close()
	return d.outputManager.Close()
}

// Field returns the particle field. Its buffers are read-only to callers.
func (d *Driver) Field() *field.Field { return d.field }

// Shockwaves returns the explosion effect system.
func (d *Driver) Shockwaves() *systems.ShockwaveSystem { return d.shockwaves }

// Frame returns the number of completed steps.
func (d *Driver) Frame() uint64 { return d.frame }

// Mode returns the active mode.
func (d *Driver) Mode() components.Mode { return d.mode }

// TargetShape returns the shape the field is morphing toward.
func (d *Driver) TargetShape() shape.ID { return d.target }

// Hand returns the hand sample used by the last step.
func (d *Driver) Hand() components.HandSample { return d.hand }

// Charge returns the charge after the last step.
func (d *Driver) Charge() float64 { return d.event.Charge }

// LastEvent returns the charge event of the last step.
func (d *Driver) LastEvent() charge.Event { return d.event }

// Loading reports whether a consult is in flight.
func (d *Driver) Loading() bool { return d.loading }

// Message returns the last oracle answer for this mode, if any.
func (d *Driver) Message() (oracle.Response, bool) {
	if d.message == nil {
		return oracle.Response{}, false
	}
	return *d.message, true
}

// CameraStatus reports the camera state, Idle without a camera.
func (d *Driver) CameraStatus() capture.Status {
	if d.camera == nil {
		return capture.StatusIdle
	}
	return d.camera.Status()
}

// Perf returns the frame timing collector.
func (d *Driver) Perf() *telemetry.PerfCollector { return d.perf }

// Config returns the configuration the driver was built with.
func (d *Driver) Config() *config.Config { return d.cfg }
