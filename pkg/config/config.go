// Package config loads and validates the dashboard settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/psitop/psitop/pkg/types"
)

// Config holds every tunable. Values come from the optional YAML file, then
// command-line flags override in main.
type Config struct {
	// Threshold is the initial event threshold percent. Snapped to a
	// multiple of 5 and clamped to [5, 95].
	Threshold int `yaml:"threshold"`

	// Interval is the initial event detection window in seconds; one of
	// 1, 3, 10, 60, 300.
	Interval int `yaml:"interval"`

	// Period is the sampling tick length.
	Period time.Duration `yaml:"period"`

	// Debug switches to plain line output without taking over the terminal.
	Debug bool `yaml:"debug"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile receives log output while the dashboard owns the terminal.
	// Empty means logs are discarded in dashboard mode and written to
	// stderr in debug mode.
	LogFile string `yaml:"log_file"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Threshold: 20,
		Interval:  types.SampleLags[0],
		Period:    types.DefaultPeriod,
		LogLevel:  "info",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is fine
// when the path was not explicitly requested.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize snaps every field into its valid range. Out-of-range values are
// corrected, not rejected.
func (c Config) Normalize() Config {
	out := c
	out.Threshold = types.ClampThreshold(c.Threshold)
	out.Interval = nearestInterval(c.Interval)
	if out.Period <= 0 {
		out.Period = types.DefaultPeriod
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	return out
}

// nearestInterval picks the closest allowed event interval.
func nearestInterval(v int) int {
	best := types.EventIntervals[0]
	bestDist := -1
	for _, iv := range types.EventIntervals {
		dist := v - iv
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = iv, dist
		}
	}
	return best
}
