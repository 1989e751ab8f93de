// Package game is the raylib frontend: window input, 3D drawing and the HUD
// around a driver.Driver.
package game

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/audio"
	"github.com/pthm-cable/oracle/camera"
	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/driver"
	"github.com/pthm-cable/oracle/oracle"
	"github.com/pthm-cable/oracle/renderer"
	"github.com/pthm-cable/oracle/ui"
)

// Options configures game initialization.
type Options struct {
	Seed           int64
	Logger         *slog.Logger
	LogStats       bool    // Output stats via slog
	StatsWindowSec float64 // Stats window size in seconds
	OutputDir      string  // Directory for CSV output (empty = disabled)
	Headless       bool    // Skip renderers and HUD
	Mode           components.Mode
	ReplayPath     string // Hand recording to replay instead of the pointer
	RecordPath     string // Write the hand frames seen to this CSV
}

// Game holds the frontend state around the driver.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	driver  *driver.Driver
	capture capture.Setup
	audio   *audio.Engine
	camera  *camera.Camera

	// Renderers
	fieldRenderer   *renderer.FieldRenderer
	gridRenderer    *renderer.GridRenderer
	effectsRenderer *renderer.EffectsRenderer
	hud             *ui.HUD

	screenWidth  float32
	screenHeight float32
	headless     bool
	dragging     bool
}

// NewGameWithOptions creates a game using config.Cfg(). The window must
// already exist unless opts.Headless is set.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	setup, err := capture.NewSetup(cfg, opts.ReplayPath, opts.RecordPath, logger)
	if err != nil {
		return nil, err
	}

	consulter, err := oracle.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	var engine *audio.Engine
	if !opts.Headless {
		engine = audio.New(cfg.Audio, logger)
		if err := engine.Start(); err != nil {
			logger.Warn("audio unavailable", "error", err)
			engine = nil
		}
	}

	d, err := driver.New(driver.Options{
		Config:         cfg,
		Seed:           opts.Seed,
		Logger:         logger,
		Camera:         setup.Session,
		Oracle:         consulter,
		Audio:          engine,
		LogStats:       opts.LogStats,
		StatsWindowSec: opts.StatsWindowSec,
		OutputDir:      opts.OutputDir,
	})
	if err != nil {
		engine.Close()
		return nil, err
	}
	d.SetMode(opts.Mode)

	w, h := float32(cfg.Screen.Width), float32(cfg.Screen.Height)
	g := &Game{
		cfg:          cfg,
		logger:       logger,
		driver:       d,
		capture:      setup,
		audio:        engine,
		screenWidth:  w,
		screenHeight: h,
		headless:     opts.Headless,
		camera: camera.New(w, h,
			float32(cfg.Camera.Distance),
			float32(cfg.Camera.FOV),
			float32(cfg.Camera.MinDistance),
			float32(cfg.Camera.MaxDistance)),
	}
	g.camera.AutoRotateSpeed = float32(cfg.Camera.AutoRotateSpeed)

	if !opts.Headless {
		g.fieldRenderer = renderer.NewFieldRenderer(cfg.Render)
		g.gridRenderer = renderer.NewGridRenderer(cfg.Grid, opts.Seed)
		g.effectsRenderer = renderer.NewEffectsRenderer()
		g.hud = ui.NewHUD(int32(w), int32(h))
	}
	return g, nil
}

// Update runs one display frame: input, HUD actions, then the driver.
func (g *Game) Update() {
	g.handleInput()
	g.driver.Step()
	g.camera.Update(float32(g.cfg.Derived.DT), g.driver.Mode().Morphing())
}

// UpdateHeadless steps the driver without reading input.
func (g *Game) UpdateHeadless() {
	g.driver.Step()
}

// Frame returns the number of frames stepped.
func (g *Game) Frame() uint64 {
	return g.driver.Frame()
}

// Driver exposes the scene state.
func (g *Game) Driver() *driver.Driver {
	return g.driver
}

// Unload releases the camera, audio and output files.
func (g *Game) Unload() {
	if err := g.driver.Close(); err != nil {
		g.logger.Error("closing driver", "error", err)
	}
}

// applyActions forwards what the HUD asked for this frame.
func (g *Game) applyActions(act ui.Actions) {
	if act.Mode != nil {
		g.driver.SetMode(*act.Mode)
		g.hud.ClearInput()
	}
	if act.Submit != "" {
		g.driver.Submit(act.Submit)
	}
}

func (g *Game) hudState() ui.State {
	s := ui.State{
		Mode:    g.driver.Mode(),
		Loading: g.driver.Loading(),
		Charge:  g.driver.Charge(),
		Hand:    g.driver.Hand(),
		Camera:  g.driver.CameraStatus(),
	}
	if msg, ok := g.driver.Message(); ok {
		s.Keyword, s.Message = msg.Keyword, msg.Message
	}
	if s.Camera == capture.StatusError {
		s.CameraErr = g.capture.Session.Err()
	}
	return s
}

func background(c [3]int) rl.Color {
	return rl.NewColor(uint8(c[0]), uint8(c[1]), uint8(c[2]), 255)
}
