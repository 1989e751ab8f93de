package driver

import (
	"errors"
	"strings"
	"time"

	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/charge"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/oracle"
	"github.com/pthm-cable/oracle/shape"
	"github.com/pthm-cable/oracle/telemetry"
)

// SetMode switches the simulation branch. The target returns to RANDOM, the
// message and charge are cleared and the camera runs only in EVOCA.
// Particle positions are kept. Selecting the active mode is a no-op.
func (d *Driver) SetMode(m components.Mode) {
	if m == d.mode {
		return
	}
	prev := d.mode
	d.mode = m
	d.target = shape.Random
	d.message = nil
	d.loading = false
	d.gen++
	d.charge.Reset()
	d.event = charge.Event{}
	d.hand = components.NoHand

	d.logger.Info("mode changed", "from", prev.String(), "to", m.String(), "frame", d.frame)
	d.writeEvent(telemetry.NewModeChangeEvent(d.frame, m.String()))

	if d.camera == nil {
		return
	}
	if m == components.ModeEvoca {
		if err := d.camera.Start(d.ctx); err != nil && !errors.Is(err, capture.ErrAlreadyActive) {
			d.logger.Error("camera start failed", "error", err)
		}
		return
	}
	if prev == components.ModeEvoca {
		d.camera.Stop()
	}
}

// Submit sends a question to the oracle in the background. Blank questions,
// questions in EVOCA and questions while one is in flight are ignored.
// The field scatters to RANDOM until the answer arrives.
func (d *Driver) Submit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || d.loading || !d.mode.Morphing() {
		return false
	}

	d.loading = true
	d.target = shape.Random
	d.message = nil

	ctx, gen, mode := d.ctx, d.gen, d.mode
	started := time.Now()
	go func() {
		resp := d.oracle.Consult(ctx, text, mode)
		select {
		case d.consults <- consultResult{gen: gen, resp: resp, latency: time.Since(started)}:
		case <-ctx.Done():
		}
	}()
	return true
}

// pollConsult applies a finished consult without waiting for one.
func (d *Driver) pollConsult() {
	var res consultResult
	select {
	case res = <-d.consults:
	default:
		return
	}

	d.collector.RecordConsult(res.resp.Source == oracle.SourceFallback)
	d.writeEvent(telemetry.NewConsultEvent(d.frame, res.resp.Shape.String(), res.resp.Source.String(), res.latency.Seconds()))

	if res.gen != d.gen {
		d.logger.Debug("dropping answer from previous mode", "keyword", res.resp.Keyword)
		return
	}
	resp := res.resp
	d.loading = false
	d.message = &resp
	d.target = resp.Shape
	// The field never saw the RANDOM scatter, so Step would keep the old
	// sample of the same shape.
	if d.field.Shape() == resp.Shape {
		d.field.Retarget(resp.Shape)
	}
}
