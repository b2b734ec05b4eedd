package server

import (
	"os"
	"strings"
)

// Config holds HTTP server settings.
type Config struct {
	Addr         string
	AllowOrigins []string

	// SweepSchedule is the cron spec of the stale-assessment sweep.
	SweepSchedule string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		AllowOrigins:  []string{"*"},
		SweepSchedule: "@every 1m",
	}
}

// ConfigFromEnv reads WELLCHECK_ADDR, WELLCHECK_CORS_ORIGINS
// (comma-separated) and WELLCHECK_SWEEP_SCHEDULE.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if a := os.Getenv("WELLCHECK_ADDR"); a != "" {
		cfg.Addr = a
	}
	if o := os.Getenv("WELLCHECK_CORS_ORIGINS"); o != "" {
		var origins []string
		for _, s := range strings.Split(o, ",") {
			if s = strings.TrimSpace(s); s != "" {
				origins = append(origins, s)
			}
		}
		if len(origins) > 0 {
			cfg.AllowOrigins = origins
		}
	}
	if s := os.Getenv("WELLCHECK_SWEEP_SCHEDULE"); s != "" {
		cfg.SweepSchedule = s
	}
	return cfg
}
