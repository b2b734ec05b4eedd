package assessment

import (
	"os"
	"time"
)

// Config tunes the reasoning-service call.
type Config struct {
	// Timeout bounds the single provider call. Default: 30s.
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		MaxTokens:   512,
		Temperature: 0.2,
	}
}

// ConfigFromEnv applies WELLCHECK_ASSESS_TIMEOUT over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if d, err := time.ParseDuration(os.Getenv("WELLCHECK_ASSESS_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}
