package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config represents the ptyrec CLI configuration.
type Config struct {
	Shell    string   `mapstructure:"shell"`
	LogDir   string   `mapstructure:"log_dir"`
	Capture  Capture  `mapstructure:"capture"`
	Prompt   Prompt   `mapstructure:"prompt"`
	Commands Commands `mapstructure:"commands"`
}

// Capture controls the session capture sink.
type Capture struct {
	ChunkSize int   `mapstructure:"chunk_size"`
	LogData   *bool `mapstructure:"log_data"`
}

// ShouldLogData returns whether payload bytes are included in the structured
// log. Defaults to true when not explicitly set.
func (c *Capture) ShouldLogData() bool {
	if c.LogData == nil {
		return true
	}
	return *c.LogData
}

// Prompt holds per-shell prompt overrides. Empty values mean the built-in
// session prompts.
type Prompt struct {
	Bash string `mapstructure:"bash"`
	Zsh  string `mapstructure:"zsh"`
}

// Commands controls the reserved in-session command set.
type Commands struct {
	Enabled *bool `mapstructure:"enabled"`
}

// ShouldIntercept returns whether reserved tokens are intercepted before
// reaching the shell. Defaults to true when not explicitly set.
func (c *Commands) ShouldIntercept() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// Load loads the configuration from ~/.ptyrec/config.yaml or returns defaults.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	configDir := filepath.Join(home, ".ptyrec")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	setDefaults(home)

	// Try to read config file, but don't fail if it doesn't exist
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand ~ in the log directory
	if expanded, err := homedir.Expand(cfg.LogDir); err == nil {
		cfg.LogDir = expanded
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(home string) {
	viper.SetDefault("shell", "")
	viper.SetDefault("log_dir", filepath.Join(home, ".ptyrec", "log"))
	viper.SetDefault("capture.chunk_size", 1024)
	viper.SetDefault("capture.log_data", true)
	viper.SetDefault("prompt.bash", "")
	viper.SetDefault("prompt.zsh", "")
	viper.SetDefault("commands.enabled", true)
}

// ConfigDir returns the ptyrec configuration directory path.
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ptyrec"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(configDir, 0755)
}
