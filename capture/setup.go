package capture

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/vision"
)

// Setup is a session and, when the hand follows the pointer, the device the
// frontend feeds.
type Setup struct {
	Session *Session
	Pointer *PointerDevice // nil for replays
}

// NewSetup builds the capture session cfg describes. A non-empty replay
// overrides cfg.Vision.ReplayPath; a non-empty record tees frames to a CSV
// recording.
func NewSetup(cfg *config.Config, replay, record string, logger *slog.Logger) (Setup, error) {
	var setup Setup
	var device Device

	path := cfg.Vision.ReplayPath
	if replay != "" {
		path = replay
	}
	kind := cfg.Vision.Device
	if replay != "" {
		kind = "replay"
	}

	switch kind {
	case "", "pointer":
		setup.Pointer = NewPointerDevice()
		device = setup.Pointer
	case "replay":
		if path == "" {
			return setup, fmt.Errorf("replay device needs a recording path")
		}
		device = NewReplayDevice(path, cfg.Vision.ReplayLoop)
	default:
		return setup, fmt.Errorf("unknown vision device %q", kind)
	}

	if record != "" {
		device = NewRecordingDevice(device, record)
	}

	tracker := vision.NewTracker(&vision.FrameDetector{}, cfg.Gesture.CurlMultiplier, logger)
	setup.Session = NewSession(device, tracker, cfg.Vision.FPS, logger)
	return setup, nil
}
