package cli

import (
	"fmt"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/cachedir"
	"github.com/glorpus-work/cratecache/pkg/config"
)

// These variables will be set by the main package.
var (
	ConfigPath *string
	CargoHome  *string
	Verbose    *bool
)

// loadSettings loads the settings file named on the command line, or the
// default one, and initializes logging from it.
func loadSettings() (*config.Config, error) {
	path := ""
	if ConfigPath != nil {
		path = *ConfigPath
	}
	if path == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		path = defaultPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level)

	return cfg, nil
}

// loadInventory resolves the cargo home and builds the lazy inventory over
// it. The --cargo-home flag wins over the settings file, which wins over the
// environment.
func loadInventory() (*config.Config, *cache.Inventory, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}

	var paths *cachedir.Paths
	switch {
	case CargoHome != nil && *CargoHome != "":
		paths, err = cachedir.New(*CargoHome)
	case cfg.Settings.CargoHome != "":
		paths, err = cachedir.New(cfg.Settings.CargoHome)
	default:
		paths, err = cachedir.Default()
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("resolved cargo home", logger.Fields{"path": paths.CargoHome})
	return cfg, cache.NewInventory(paths), nil
}
