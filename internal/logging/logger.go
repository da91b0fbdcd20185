// Package logging builds the service's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Environments accepted by New.
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}

// ParseEnv validates an environment name. Empty means dev.
func ParseEnv(s string) (string, error) {
	env := strings.TrimSpace(s)
	switch env {
	case "":
		return EnvDev, nil
	case EnvDev, EnvProd:
		return env, nil
	default:
		return "", fmt.Errorf("invalid env %q (allowed: dev, prod)", s)
	}
}

// New returns a colourised tint logger in dev and a JSON logger otherwise.
func New(w io.Writer, env string, level slog.Level, version string) *slog.Logger {
	if env == EnvDev {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", "airmap")
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", "airmap",
		"version", version,
		"env", env,
	)
}
