// Package config handles configuration loading and validation for traceplay.
package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Correlate CorrelateConfig `yaml:"correlate"`
	Playback  PlaybackConfig  `yaml:"playback"`

	// TraceDirs are glob patterns (doublestar syntax) used to discover
	// trace files for the picker and the ls command.
	TraceDirs []string `yaml:"trace_dirs"`
}

// CorrelateConfig tunes SEND/RECV matching.
type CorrelateConfig struct {
	// MaxDelayMS is the propagation-delay window: the maximum time a RECV
	// may lag its causing SEND and still be correlated. The window is a
	// property of the trace generator, not of this tool, hence configurable.
	MaxDelayMS int64 `yaml:"max_delay_ms"`

	// DefaultTTL substitutes for malformed or absent ttl columns.
	DefaultTTL int `yaml:"default_ttl"`
}

// PlaybackConfig tunes the playback controller and tick rate.
type PlaybackConfig struct {
	MinSpeed     float64 `yaml:"min_speed"`
	MaxSpeed     float64 `yaml:"max_speed"`
	DefaultSpeed float64 `yaml:"default_speed"`

	// TickMS is the renderer tick interval in milliseconds.
	TickMS int `yaml:"tick_ms"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Correlate: CorrelateConfig{
			MaxDelayMS: 5,
			DefaultTTL: 6,
		},
		Playback: PlaybackConfig{
			MinSpeed:     0.25,
			MaxSpeed:     8,
			DefaultSpeed: 1,
			TickMS:       50,
		},
	}
}

// Load reads configuration from the given path. A missing file is not an
// error; defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Correlate.MaxDelayMS == 0 {
		c.Correlate.MaxDelayMS = defaults.Correlate.MaxDelayMS
	}
	if c.Correlate.DefaultTTL == 0 {
		c.Correlate.DefaultTTL = defaults.Correlate.DefaultTTL
	}
	if c.Playback.MinSpeed == 0 {
		c.Playback.MinSpeed = defaults.Playback.MinSpeed
	}
	if c.Playback.MaxSpeed == 0 {
		c.Playback.MaxSpeed = defaults.Playback.MaxSpeed
	}
	if c.Playback.DefaultSpeed == 0 {
		c.Playback.DefaultSpeed = defaults.Playback.DefaultSpeed
	}
	if c.Playback.TickMS == 0 {
		c.Playback.TickMS = defaults.Playback.TickMS
	}
}

// Validate checks that the configuration is valid. Violations are collected
// as criterio field errors so the printer can render them per field.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.Correlate.MaxDelayMS < 0 {
		errs = errs.Append("correlate.max_delay_ms", fmt.Errorf("must not be negative"))
	}
	if c.Correlate.DefaultTTL < 0 {
		errs = errs.Append("correlate.default_ttl", fmt.Errorf("must not be negative"))
	}
	if c.Playback.MinSpeed <= 0 {
		errs = errs.Append("playback.min_speed", fmt.Errorf("must be positive"))
	}
	if c.Playback.MaxSpeed < c.Playback.MinSpeed {
		errs = errs.Append("playback.max_speed", fmt.Errorf("must be at least min_speed (%g)", c.Playback.MinSpeed))
	}
	if c.Playback.DefaultSpeed < c.Playback.MinSpeed || c.Playback.DefaultSpeed > c.Playback.MaxSpeed {
		errs = errs.Append("playback.default_speed", fmt.Errorf("must be within [%g, %g]", c.Playback.MinSpeed, c.Playback.MaxSpeed))
	}
	if c.Playback.TickMS < 1 {
		errs = errs.Append("playback.tick_ms", fmt.Errorf("must be at least 1"))
	}

	return errs.ToError()
}
