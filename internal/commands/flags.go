package commands

import (
	"os"
	"path/filepath"

	"github.com/mesh-sim/traceplay/internal/core/config"
	"github.com/mesh-sim/traceplay/internal/replay"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Service loads and processes trace recordings
	Service *replay.Service
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "traceplay", "config.yaml")
}
