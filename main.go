package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/telemetry"
)

// flags shared by every subcommand
type flags struct {
	configPath  string
	seed        int64
	maxTicks    int
	outputDir   string
	logStats    bool
	statsWindow float64
	mode        string
	replay      string
	record      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("oracle failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "oracle",
		Short:         "Particle oracle: ask a question, watch the field answer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	pf.Int64Var(&f.seed, "seed", 0, "RNG seed (0 = time-based)")
	pf.IntVar(&f.maxTicks, "max-ticks", 0, "Stop after N frames (0 = unlimited)")
	pf.StringVar(&f.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	pf.BoolVar(&f.logStats, "log-stats", false, "Output stats via slog")
	pf.Float64Var(&f.statsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	pf.StringVar(&f.mode, "mode", "FUTURE", "Starting mode: FUTURE, PAST or EVOCA")
	pf.StringVar(&f.replay, "replay", "", "Replay a hand recording instead of the pointer")
	pf.StringVar(&f.record, "record", "", "Record the hand frames to this CSV")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Open the window (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWindow(f)
			},
		},
		newHeadlessCmd(f),
		newTermCmd(f),
		newShapesCmd(f),
	)
	return root
}

// session is what every frontend needs before it starts.
type session struct {
	cfg         *config.Config
	logger      *slog.Logger
	closeLog    func() error
	seed        int64
	mode        components.Mode
	statsWindow float64
}

// setup loads the config, then builds the logger. Log records go to w.
func (f *flags) setup(w io.Writer) (*session, error) {
	if err := config.Init(f.configPath); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	mode, ok := components.ParseMode(f.mode)
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", f.mode)
	}

	logger, closeLog := telemetry.NewLogger(cfg.Logging, w)
	slog.SetDefault(logger)

	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	statsWindow := cfg.Telemetry.StatsWindow
	if f.statsWindow > 0 {
		statsWindow = f.statsWindow
	}

	return &session{
		cfg:         cfg,
		logger:      logger,
		closeLog:    closeLog,
		seed:        seed,
		mode:        mode,
		statsWindow: statsWindow,
	}, nil
}

func (s *session) close() {
	if err := s.closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, "closing log:", err)
	}
}
