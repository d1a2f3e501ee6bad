package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/tempest-udp-collector/internal/config"
)

// NewLogger builds the service logger from config: level, json/text format,
// and output destination ("stderr", "stdout", or a file path opened for
// append). The file handle, when used, lives for the process lifetime.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	w, err := logOutput(cfg.LogOutput)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), nil
}

func logOutput(dest string) (io.Writer, error) {
	switch dest {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log output: %w", err)
		}
		return f, nil
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
