// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects level and output format.
type Config struct {
	// Level is a zerolog level name. Default: "info".
	Level string

	// Format is "console" or "json". Default: "console".
	Format string
}

// DefaultConfig returns info-level console logging.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console"}
}

// ConfigFromEnv reads WELLCHECK_LOG_LEVEL and WELLCHECK_LOG_FORMAT.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if l := os.Getenv("WELLCHECK_LOG_LEVEL"); l != "" {
		cfg.Level = l
	}
	if f := os.Getenv("WELLCHECK_LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	return cfg
}

// New builds a logger writing to w and installs it as log.Logger.
func New(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	switch strings.ToLower(cfg.Format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, nil
}
