package telemetry

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pthm-cable/oracle/config"
)

// NewLogger builds the JSON logger. Records go to w and, when cfg.File is
// set, to a rotated file as well. The returned close func releases the file.
func NewLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.File == "" {
		return slog.New(slog.NewJSONHandler(w, opts)), func() error { return nil }
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return slog.New(slog.NewJSONHandler(io.MultiWriter(w, file), opts)), file.Close
}

// ParseLevel maps debug, warn and error to their slog levels. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
