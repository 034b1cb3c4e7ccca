package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.Monitor.TickIntervalMs <= 0 {
		t.Error("default tick interval not positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Monitor.RequestBuffer != 256 {
		t.Errorf("RequestBuffer = %d, want 256", cfg.Monitor.RequestBuffer)
	}
	if !cfg.Store.Watch {
		t.Error("Store.Watch default = false, want true")
	}
}

func TestInit_ExplicitFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "logging:\n  level: DEBUG\nmonitor:\n  tick_interval_ms: 10\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Init(path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want DEBUG", cfg.Logging.Level)
	}
	if cfg.Monitor.TickIntervalMs != 10 {
		t.Errorf("TickIntervalMs = %d, want 10", cfg.Monitor.TickIntervalMs)
	}
	// Unset keys keep their defaults.
	if cfg.Monitor.RequestBuffer != 256 {
		t.Errorf("RequestBuffer = %d, want 256", cfg.Monitor.RequestBuffer)
	}
}

func TestInit_MissingExplicitFile(t *testing.T) {
	resetViper(t)
	if err := Init(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Init() with a missing explicit file returned nil error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad level", func(c *Config) { c.Logging.Level = "LOUD" }, true},
		{"zero tick", func(c *Config) { c.Monitor.TickIntervalMs = 0 }, true},
		{"negative buffer", func(c *Config) { c.Monitor.RequestBuffer = -1 }, true},
		{"lowercase level ok", func(c *Config) { c.Logging.Level = "debug" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
