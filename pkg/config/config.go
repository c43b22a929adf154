// Package config handles the optional settings file of the cache tool. All
// settings have working defaults; the file only exists for users who want to
// pin a cargo home, a default trim limit or a log level.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/cratecache/pkg/errutils"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// CargoHome overrides the cache location. Empty means the CARGO_HOME
	// environment variable or ~/.cargo.
	CargoHome string `yaml:"cargo_home,omitempty"`

	// TrimLimit is the default size budget for trim runs, e.g. "4G".
	TrimLimit string `yaml:"trim_limit,omitempty"`

	// GitBinary is the git executable used for repository compression.
	GitBinary string `yaml:"git_binary,omitempty"`

	// TopCount is the number of rows the grouped statistics view prints.
	TopCount int `yaml:"top_count"`

	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// Default configuration values.
const (
	DefaultTopCount  = 20
	DefaultGitBinary = "git"

	yamlIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			TopCount:  DefaultTopCount,
			GitBinary: DefaultGitBinary,
			LogLevel:  "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errutils.Wrap(errutils.ErrConfigParse, "empty config path")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigParse, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errutils.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errutils.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves configuration to a file, atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errutils.Wrap(errutils.ErrConfigParse, "empty config path")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errutils.Wrap(errutils.ErrConfigParse, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return errutils.Wrap(err, "failed to create config directory")
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errutils.Wrap(err, "failed to create config file")
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(yamlIndent)
	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errutils.Wrap(err, "failed to encode config")
	}
	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errutils.Wrap(err, "failed to replace config file")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errutils.Wrap(errutils.ErrConfigParse, "nil config")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Settings.LogLevel)] {
		return errutils.Wrapf(errutils.ErrConfigParse, "invalid log level %q", c.Settings.LogLevel)
	}
	if c.Settings.TopCount < 0 {
		return errutils.Wrap(errutils.ErrConfigParse, "top_count must not be negative")
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "cratecache", "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Settings.TopCount == 0 {
		c.Settings.TopCount = defaults.Settings.TopCount
	}
	if c.Settings.GitBinary == "" {
		c.Settings.GitBinary = defaults.Settings.GitBinary
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
