package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"tinyplanet-server/internal/shared/config"
)

// Init installs the process-wide slog logger described by the loaded config.
func Init() error {
	if config.GlobalConfig == nil {
		return fmt.Errorf("config must be initialized before logger")
	}

	logConfig := config.GlobalConfig.Logging
	log, err := New(logConfig, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	slog.With("component", "logger").Debug("Logger initialized",
		"level", logConfig.Level,
		"json_format", logConfig.JSONFormat,
		"environment", config.GlobalConfig.Server.Environment,
	)
	return nil
}

// New builds a logger writing to w.
func New(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSONFormat {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// ParseLevel maps LOG_LEVEL values onto slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
