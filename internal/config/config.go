// Package config loads liquers-go configuration from file, environment and
// defaults via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete liquers-go configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level"`
	// Dir is the directory for the log file. Empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// StoreConfig controls the file-backed data store.
type StoreConfig struct {
	// Dir is the store root directory. Empty disables the store.
	Dir string `mapstructure:"dir"`
	// Watch enables invalidation of cached queries when store files change.
	Watch bool `mapstructure:"watch"`
}

// MonitorConfig controls the coordination loop.
type MonitorConfig struct {
	// TickIntervalMs is the coordination cycle interval in milliseconds.
	TickIntervalMs int `mapstructure:"tick_interval_ms"`
	// RequestBuffer is the capacity of the inbound request channel.
	RequestBuffer int `mapstructure:"request_buffer"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO"},
		Store:   StoreConfig{Watch: true},
		Monitor: MonitorConfig{TickIntervalMs: 50, RequestBuffer: 256},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("store.dir", defaults.Store.Dir)
	viper.SetDefault("store.watch", defaults.Store.Watch)
	viper.SetDefault("monitor.tick_interval_ms", defaults.Monitor.TickIntervalMs)
	viper.SetDefault("monitor.request_buffer", defaults.Monitor.RequestBuffer)
}

// Init wires viper to the config file and environment. If cfgFile is empty
// the default location is searched. A missing config file is not an error.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(ConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LIQUERS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Only an explicitly requested file is required to exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		if cfgFile == "" && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", viper.ConfigFileUsed(), err)
	}
	return nil
}

// Load unmarshals and validates the current viper state.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("config: invalid logging level %q", c.Logging.Level)
	}
	if c.Monitor.TickIntervalMs <= 0 {
		return fmt.Errorf("config: tick_interval_ms must be positive, got %d", c.Monitor.TickIntervalMs)
	}
	if c.Monitor.RequestBuffer <= 0 {
		return fmt.Errorf("config: request_buffer must be positive, got %d", c.Monitor.RequestBuffer)
	}
	return nil
}

// ConfigDir returns the user's liquers config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "liquers")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".liquers"
	}
	return filepath.Join(home, ".config", "liquers")
}
