// Package config loads the daemon configuration from a KDL file, falling
// back to defaults when no file is present at the default path.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sblinch/kdl-go"

	"github.com/felnanuke2/rapid-crak/internal/logging"
)

const defaultConfigPath = "./config/config.kdl"

type DaemonConfig struct {
	LogLevel      string `kdl:"log-level"`
	ApiServerAddr string `kdl:"api-server-addr"`
	// WorkerCount caps each crack job's worker pool; zero means one worker
	// per logical core.
	WorkerCount int `kdl:"worker-count"`
}

func DefaultConfig() *DaemonConfig {
	return &DaemonConfig{
		LogLevel:      "info",
		ApiServerAddr: "127.0.0.1:8080",
		WorkerCount:   0,
	}
}

// InitializeConfig reads the config file named by args (or the default
// path), overlays it on the defaults, and wires up the global logger.
func InitializeConfig(args []string) (*DaemonConfig, error) {
	configPath := defaultConfigPath
	explicit := len(args) > 0
	if explicit {
		configPath = args[0]
	}
	cfg := *DefaultConfig()
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := kdl.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "unmarshal kdl")
		}
	case os.IsNotExist(err) && !explicit:
		// No file at the default path: run on defaults.
	default:
		return nil, errors.Wrap(err, "read config")
	}
	logging.Setup(cfg.LogLevel)
	return &cfg, nil
}
