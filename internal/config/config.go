// Package config loads runtime configuration for the langid commands from
// the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Cfg holds all runtime configuration loaded from environment variables.
type Cfg struct {
	// ModelDir is the directory holding the model files.
	// Populated from LANGID_MODEL_DIR; empty means use the default location.
	ModelDir string

	// PoolSize is the number of concurrent inference sessions.
	// Populated from LANGID_POOL_SIZE; zero means one session per CPU.
	PoolSize int

	// LogLevel is the minimum level for diagnostic output.
	// Populated from LANGID_LOG (debug, info, warn, error).
	LogLevel slog.Level
}

// Load reads .env (if present) then environment variables and returns Cfg.
// Values that fail to parse fall back to their defaults.
func Load() Cfg {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	return Cfg{
		ModelDir: strings.TrimSpace(os.Getenv("LANGID_MODEL_DIR")),
		PoolSize: loadPoolSize(),
		LogLevel: loadLogLevel(),
	}
}

func loadPoolSize() int {
	raw := strings.TrimSpace(os.Getenv("LANGID_POOL_SIZE"))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func loadLogLevel() slog.Level {
	raw := strings.TrimSpace(os.Getenv("LANGID_LOG"))
	switch {
	case strings.EqualFold(raw, "debug"):
		return slog.LevelDebug
	case strings.EqualFold(raw, "warn"), strings.EqualFold(raw, "warning"):
		return slog.LevelWarn
	case strings.EqualFold(raw, "error"):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
