package driver

import (
	"fmt"
	"time"

	"github.com/pthm-cable/oracle/telemetry"
)

// initTelemetry sets up the stats window, perf collector and CSV output.
func (d *Driver) initTelemetry(opts Options) error {
	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = d.cfg.Telemetry.StatsWindow
	}
	d.collector = telemetry.NewCollector(windowSec, d.cfg.Derived.DT)
	budget := time.Duration(d.cfg.Derived.DT * float64(time.Second))
	d.perf = telemetry.NewPerfCollector(d.cfg.Telemetry.PerfCollectorWindow, budget)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(d.cfg); err != nil {
		om.Close()
		return fmt.Errorf("writing config snapshot: %w", err)
	}
	d.outputManager = om
	if om != nil {
		d.logger = d.logger.With("session", om.SessionID())
		d.logger.Info("writing telemetry", "dir", om.Dir())
	}
	return nil
}

// recordFrame folds the step into the stats window and flushes it when due.
func (d *Driver) recordFrame() {
	d.collector.RecordFrame(d.event.Charge, d.hand.Detected)
	if d.event.Explode {
		d.collector.RecordExplosion()
		d.writeEvent(telemetry.NewExplosionEvent(d.frame, d.event.Released))
	}

	if !d.collector.ShouldFlush(d.frame) {
		return
	}
	d.speeds = telemetry.Speeds(d.speeds, d.field.Velocities())
	stats := d.collector.Flush(d.frame, telemetry.FrameState{
		Mode:   d.mode.String(),
		Shape:  d.target.String(),
		Camera: d.CameraStatus().String(),
		Field:  d.field.Stats(),
		Speeds: d.speeds,
	})
	perfStats := d.perf.Stats()

	if d.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := d.outputManager.WriteTelemetry(stats); err != nil {
		d.logger.Error("failed to write telemetry", "error", err)
	}
	if err := d.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		d.logger.Error("failed to write perf", "error", err)
	}
}

// writeEvent logs the event when stats logging is on and appends it to
// events.csv.
func (d *Driver) writeEvent(e telemetry.Event) {
	if d.logStats {
		e.LogEvent()
	}
	if err := d.outputManager.WriteEvent(e); err != nil {
		d.logger.Error("failed to write event", "error", err)
	}
}
