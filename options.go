package langid

import (
	"log/slog"
	"runtime"
)

// Option configures an Identifier.
type Option func(*config)

type config struct {
	poolSize  int
	maxLength int
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		poolSize:  runtime.NumCPU(),
		maxLength: 512,
		logger:    slog.Default(),
	}
}

// WithPoolSize sets the ONNX session pool size (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithMaxLength sets the token sequence limit, including the two framing
// tokens (default: 512). Longer inputs are truncated before inference.
func WithMaxLength(n int) Option {
	return func(c *config) {
		if n > 2 {
			c.maxLength = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
