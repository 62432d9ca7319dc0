package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIsolated(t *testing.T) *Config {
	t.Helper()
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadIsolated(t)

	assert.Equal(t, "", cfg.Shell, "shell defaults to $SHELL at launch time")
	assert.Contains(t, cfg.LogDir, filepath.Join(".ptyrec", "log"))
	assert.Equal(t, 1024, cfg.Capture.ChunkSize)
	assert.True(t, cfg.Capture.ShouldLogData())
	assert.True(t, cfg.Commands.ShouldIntercept())
	assert.Equal(t, "", cfg.Prompt.Bash)
	assert.Equal(t, "", cfg.Prompt.Zsh)
}

func TestLoadFromFile(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".ptyrec")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	content := `shell: /bin/zsh
capture:
  chunk_size: 512
  log_data: false
commands:
  enabled: false
prompt:
  zsh: "custom %~ $ "
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644))

	viper.Reset()
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/bin/zsh", cfg.Shell)
	assert.Equal(t, 512, cfg.Capture.ChunkSize)
	assert.False(t, cfg.Capture.ShouldLogData())
	assert.False(t, cfg.Commands.ShouldIntercept())
	assert.Equal(t, "custom %~ $ ", cfg.Prompt.Zsh)
}

func TestToggleHelpers(t *testing.T) {
	t.Run("nil pointers mean the defaults", func(t *testing.T) {
		var capture Capture
		assert.True(t, capture.ShouldLogData())

		var commands Commands
		assert.True(t, commands.ShouldIntercept())
	})

	t.Run("explicit values win", func(t *testing.T) {
		off := false
		capture := Capture{LogData: &off}
		assert.False(t, capture.ShouldLogData())

		commands := Commands{Enabled: &off}
		assert.False(t, commands.ShouldIntercept())
	})
}
