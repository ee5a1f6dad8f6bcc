package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// initLogger configures the default slog logger from the CLI flags: level
// parsed from --log-level, text or JSON handler selected by --log-text.
func initLogger(flags *cmdFlags) error {
	level, err := parseLogLevel(flags.LogLevel)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if flags.TextFormat {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))

	return nil
}

// parseLogLevel maps a level name to its slog level.
func parseLogLevel(level string) (slog.Level, error) {
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
