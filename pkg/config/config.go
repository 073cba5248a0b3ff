// Package config loads the reversion daemon/CLI process configuration:
// logging, the default repository location, watch-daemon behavior, and
// the optional Prometheus metrics server.
//
// Configuration sources (highest to lowest precedence):
//  1. Environment variables (REVERSION_*), for keys the file sets
//  2. Configuration file (YAML)
//  3. Default values
//
// When no configuration file is found, Load returns the defaults and no
// environment variable is consulted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level process configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Daemon  DaemonConfig  `mapstructure:"daemon" yaml:"daemon"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// DefaultRepo is the work directory used when a command is run
	// without an explicit --repo flag or REVERSION_DEFAULT_REPO override.
	DefaultRepo string `mapstructure:"default_repo" yaml:"default_repo,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// DaemonConfig controls the watch daemon's persisted state and event
// coalescing behavior.
type DaemonConfig struct {
	// StateDir is the directory holding registered.json and tracked.json.
	StateDir string `mapstructure:"state_dir" validate:"required" yaml:"state_dir"`

	// CoalesceWindow is how long to wait after a filesystem event before
	// acting on it, so that a burst of writes to the same path collapses
	// into one commit (spec §4.8).
	CoalesceWindow time.Duration `mapstructure:"coalesce_window" validate:"required,gt=0" yaml:"coalesce_window"`
}

// MetricsConfig configures the optional Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	stateDir := filepath.Join(defaultConfigDir(), "daemon")
	return &Config{
		Logging:     LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
		Daemon:      DaemonConfig{StateDir: stateDir, CoalesceWindow: 500 * time.Millisecond},
		Metrics:     MetricsConfig{Enabled: false, Port: 9191},
		DefaultRepo: filepath.Join(defaultConfigDir(), "repository"),
	}
}

// Load reads configuration from configPath (or the default location if
// empty), lets environment variables prefixed REVERSION_ override the keys
// that file sets, keeps defaults for anything the file leaves unset, and
// validates the result. When no file is found it returns Default() as is:
// environment variables are not read and no validation runs.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return Default(), nil
	}

	cfg := Default()
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks struct tag constraints (validate:"...") against cfg.
//
// go-playground/validator was chosen over hand-rolled field checks so that
// adding a constraint is a one-line tag change rather than a new branch;
// this mirrors how the ecosystem's config packages validate mapstructure
// output.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	return nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: creating directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("REVERSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: reading file: %w", err)
	}
	return true, nil
}

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "reversion")
	}
	return filepath.Join(".", ".reversion")
}
