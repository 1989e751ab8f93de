package main

import (
	"context"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/oracle/camera"
	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/driver"
	"github.com/pthm-cable/oracle/game"
	"github.com/pthm-cable/oracle/oracle"
	"github.com/pthm-cable/oracle/shape"
	"github.com/pthm-cable/oracle/term"
)

func (f *flags) gameOptions(s *session, headless bool) game.Options {
	return game.Options{
		Seed:           s.seed,
		Logger:         s.logger,
		LogStats:       f.logStats,
		StatsWindowSec: s.statsWindow,
		OutputDir:      f.outputDir,
		Headless:       headless,
		Mode:           s.mode,
		ReplayPath:     f.replay,
		RecordPath:     f.record,
	}
}

// runWindow opens the raylib window.
func runWindow(f *flags) error {
	s, err := f.setup(os.Stdout)
	if err != nil {
		return err
	}
	defer s.close()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(s.cfg.Screen.Width), int32(s.cfg.Screen.Height), "Oracle")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(s.cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(f.gameOptions(s, false))
	if err != nil {
		return err
	}
	defer g.Unload()

	s.logger.Info("starting", "seed", s.seed, "mode", s.mode.String())
	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if f.maxTicks > 0 && int(g.Frame()) >= f.maxTicks {
			break
		}
	}
	return nil
}

func newHeadlessCmd(f *flags) *cobra.Command {
	var questions []string
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Step the scene without graphics",
		Long: "Step the scene without graphics. Questions are submitted in order, " +
			"each once the previous answer has landed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd.Context(), f, questions)
		},
	}
	cmd.Flags().StringArrayVar(&questions, "ask", nil, "Question to submit (repeatable)")
	return cmd
}

func runHeadless(ctx context.Context, f *flags, questions []string) error {
	s, err := f.setup(os.Stdout)
	if err != nil {
		return err
	}
	defer s.close()

	g, err := game.NewGameWithOptions(f.gameOptions(s, true))
	if err != nil {
		return err
	}
	defer g.Unload()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	s.logger.Info("starting headless run",
		"seed", s.seed,
		"mode", s.mode.String(),
		"max_ticks", f.maxTicks,
		"questions", len(questions),
	)

	d := g.Driver()
	for ctx.Err() == nil {
		if len(questions) > 0 && !d.Loading() && d.Mode().Morphing() {
			d.Submit(questions[0])
			questions = questions[1:]
		}
		g.UpdateHeadless()

		if f.maxTicks > 0 && int(g.Frame()) >= f.maxTicks {
			s.logger.Info("max ticks reached", "frame", g.Frame())
			return nil
		}
	}
	return nil
}

func newTermCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Draw the scene in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerm(cmd.Context(), f)
		},
	}
}

func runTerm(ctx context.Context, f *flags) error {
	// The screen owns stdout; logs only go to the configured file.
	s, err := f.setup(io.Discard)
	if err != nil {
		return err
	}
	defer s.close()

	setup, err := capture.NewSetup(s.cfg, f.replay, f.record, s.logger)
	if err != nil {
		return err
	}
	consulter, err := oracle.NewFromConfig(ctx, s.cfg, s.logger)
	if err != nil {
		return err
	}
	d, err := driver.New(driver.Options{
		Config:         s.cfg,
		Seed:           s.seed,
		Logger:         s.logger,
		Camera:         setup.Session,
		Oracle:         consulter,
		LogStats:       f.logStats,
		StatsWindowSec: s.statsWindow,
		OutputDir:      f.outputDir,
	})
	if err != nil {
		return err
	}
	defer d.Close()
	d.SetMode(s.mode)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	cols, rows := screen.Size()
	cam := camera.New(float32(cols), float32(rows*2),
		float32(s.cfg.Camera.Distance),
		float32(s.cfg.Camera.FOV),
		float32(s.cfg.Camera.MinDistance),
		float32(s.cfg.Camera.MaxDistance))
	cam.AutoRotateSpeed = float32(s.cfg.Camera.AutoRotateSpeed)

	v := term.NewViewer(screen, d, setup.Pointer, cam, s.cfg.Screen.TargetFPS)
	return v.Run(ctx, uint64(max(f.maxTicks, 0)))
}

func newShapesCmd(f *flags) *cobra.Command {
	var count int
	var names string
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Write sampled shape points as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := shape.All
			if names != "" {
				ids = nil
				for _, n := range strings.Split(names, ",") {
					ids = append(ids, shape.Parse(n))
				}
			}
			seed := f.seed
			if seed == 0 {
				seed = 1
			}
			return shape.WriteCSV(cmd.OutOrStdout(), ids, count, rand.New(rand.NewSource(seed)))
		},
	}
	cmd.Flags().IntVar(&count, "count", 1000, "Points per shape")
	cmd.Flags().StringVar(&names, "shapes", "", "Comma-separated shape names (empty = all)")
	return cmd
}
