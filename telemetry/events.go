// Package telemetry provides windowed field statistics, frame timing and an
// event log for a session.
package telemetry

import "log/slog"

// EventType identifies telemetry events.
type EventType string

const (
	EventModeChange EventType = "mode_change"
	EventExplosion  EventType = "explosion"
	EventConsult    EventType = "consult"
	EventCamera     EventType = "camera"
)

// Event is one row of events.csv.
type Event struct {
	Session string    `csv:"session"`
	Frame   uint64    `csv:"frame"`
	Type    EventType `csv:"type"`
	Detail  string    `csv:"detail"`
	Value   float64   `csv:"value"`
}

// NewModeChangeEvent records entering a mode.
func NewModeChangeEvent(frame uint64, mode string) Event {
	return Event{Frame: frame, Type: EventModeChange, Detail: mode}
}

// NewExplosionEvent records a release at the given charge.
func NewExplosionEvent(frame uint64, charge float64) Event {
	return Event{Frame: frame, Type: EventExplosion, Value: charge}
}

// NewConsultEvent records an oracle answer; source is model, mock or
// fallback.
func NewConsultEvent(frame uint64, shape, source string, latencySec float64) Event {
	return Event{Frame: frame, Type: EventConsult, Detail: shape + "/" + source, Value: latencySec}
}

// NewCameraEvent records a camera status change.
func NewCameraEvent(frame uint64, status string) Event {
	return Event{Frame: frame, Type: EventCamera, Detail: status}
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	slog.Info("event",
		"type", string(e.Type),
		"frame", e.Frame,
		"detail", e.Detail,
		"value", e.Value,
	)
}
