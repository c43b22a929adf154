package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/cratecache/pkg/errutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromReader(t *testing.T) {
	yaml := `
settings:
  cargo_home: /opt/cargo
  trim_limit: 4G
  top_count: 3
  log_level: debug
`
	cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, "/opt/cargo", cfg.Settings.CargoHome)
	assert.Equal(t, "4G", cfg.Settings.TrimLimit)
	assert.Equal(t, 3, cfg.Settings.TopCount)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)

	// Unset values pick up defaults.
	assert.Equal(t, DefaultGitBinary, cfg.Settings.GitBinary)
}

func TestLoadConfigFromReaderRejectsBadLevel(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("settings:\n  log_level: loud\n"))
	require.ErrorIs(t, err, errutils.ErrConfigParse)
}

func TestLoadConfigFromReaderRejectsGarbage(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("{not yaml"))
	require.ErrorIs(t, err, errutils.ErrConfigParse)
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Settings.TrimLimit = "10G"
	require.NoError(t, cfg.SaveConfig(path))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)

	// No temp file may be left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
