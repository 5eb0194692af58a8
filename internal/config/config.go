// Package config provides Viper-based configuration loading for the decision
// engine and its runner.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds the engine-level cadence and policy defaults applied
// where a profile leaves them unset.
type EngineConfig struct {
	// TickRate is the default behavior tree evaluation interval.
	TickRate time.Duration `mapstructure:"tick_rate"`
	// UpdateInterval is the default utility selection interval.
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	// ReacquisitionTime is the default target re-evaluation interval.
	ReacquisitionTime time.Duration `mapstructure:"reacquisition_time"`
	// StateTimeout is how long an agent may sit in one state before the
	// orchestrator fires the timeout trigger; 0 disables the policy.
	StateTimeout time.Duration `mapstructure:"state_timeout"`
	// ProfileDir is the directory of role profile YAML files.
	ProfileDir string `mapstructure:"profile_dir"`
	// ScriptFile is an optional Lua file defining custom curves and
	// predicates; empty disables scripting.
	ScriptFile string `mapstructure:"script_file"`
}

// RunnerConfig holds settings for the simulation runner.
type RunnerConfig struct {
	// StepInterval is the fixed simulation step the runner advances by.
	StepInterval time.Duration `mapstructure:"step_interval"`
	// Steps is how many steps the runner executes before exiting.
	Steps int `mapstructure:"steps"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Runner  RunnerConfig  `mapstructure:"runner"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRunner(c.Runner); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.TickRate < 0 {
		errs = append(errs, "engine.tick_rate must not be negative")
	}
	if e.UpdateInterval < 0 {
		errs = append(errs, "engine.update_interval must not be negative")
	}
	if e.ReacquisitionTime < 0 {
		errs = append(errs, "engine.reacquisition_time must not be negative")
	}
	if e.StateTimeout < 0 {
		errs = append(errs, "engine.state_timeout must not be negative")
	}
	if e.ProfileDir == "" {
		errs = append(errs, "engine.profile_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRunner(r RunnerConfig) error {
	var errs []string
	if r.StepInterval <= 0 {
		errs = append(errs, "runner.step_interval must be positive")
	}
	if r.Steps < 1 {
		errs = append(errs, fmt.Sprintf("runner.steps must be >= 1, got %d", r.Steps))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with OVERMIND_ prefix
	v.SetEnvPrefix("OVERMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("engine.tick_rate", "1s")
	v.SetDefault("engine.update_interval", "1s")
	v.SetDefault("engine.reacquisition_time", "1s")
	v.SetDefault("engine.state_timeout", "30s")
	v.SetDefault("engine.profile_dir", "content/profiles")

	v.SetDefault("runner.step_interval", "100ms")
	v.SetDefault("runner.steps", 100)
}
