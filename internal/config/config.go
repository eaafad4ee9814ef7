// Package config provides configuration management for the orchestration
// core's CLI harness. It supports loading configuration from environment
// variables, a config file, and built-in defaults, following the same
// viper-based layering the rest of the host product uses.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunables the CLI harness (cmd/orchcore) uses to build a
// Session and drive strategies against a real or mock agent CLI. The
// orchestration core itself (the orchcore package) takes all of these as
// explicit constructor arguments — Config only exists to give the CLI a
// layered env/file/default source for them.
type Config struct {
	WorkingDir            string        `mapstructure:"workingDir"`
	LogRoot               string        `mapstructure:"logRoot"`
	AgentBinary           string        `mapstructure:"agentBinary"`
	DefaultModel          string        `mapstructure:"defaultModel"`
	DefaultTimeoutSeconds int           `mapstructure:"defaultTimeoutSeconds"`
	DefaultMaxWorkers     int           `mapstructure:"defaultMaxWorkers"`
	StdinFeedInterval     time.Duration `mapstructure:"stdinFeedIntervalMs"`
	Logging               LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig is loaded and its level validated, but nothing in the
// module reads it: session and process log lines have a fixed format.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workingDir", ".")
	v.SetDefault("logRoot", "./orchcore-logs")
	v.SetDefault("agentBinary", "claude")
	v.SetDefault("defaultModel", "")
	v.SetDefault("defaultTimeoutSeconds", 0)
	v.SetDefault("defaultMaxWorkers", 4)
	v.SetDefault("stdinFeedIntervalMs", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputPath", "stdout")
}

// Load reads configuration from environment variables (prefix ORCHCORE_),
// an optional config.yaml in the current directory, and defaults.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath is Load but additionally searches configPath for config.yaml.
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ORCHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	// Unmarshal decodes the plain integer into time.Duration as nanoseconds;
	// the key holds milliseconds, so re-derive explicitly.
	cfg.StdinFeedInterval = time.Duration(v.GetInt("stdinFeedIntervalMs")) * time.Millisecond

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	var errs []string
	if cfg.DefaultMaxWorkers <= 0 {
		errs = append(errs, "defaultMaxWorkers must be positive")
	}
	if cfg.DefaultTimeoutSeconds < 0 {
		errs = append(errs, "defaultTimeoutSeconds must not be negative")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
