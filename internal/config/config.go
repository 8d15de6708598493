// Package config provides configuration for the scrape pipeline. Every
// option has a working default, so a config file is optional; CLI flags
// override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL      = errors.New("base_url is required")
	ErrInvalidMaxAttempts  = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay = errors.New("retry.initial_delay_ms must be non-negative")
	ErrMissingCSVPath      = errors.New("output.csv_path is required")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config holds the full pipeline configuration.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	DataDir   string        `yaml:"data_dir"`
	Output    OutputConfig  `yaml:"output"`
	Retry     RetryPolicy   `yaml:"retry"`
	Logging   LoggingConfig `yaml:"logging"`
}

// OutputConfig names the final artifacts. SQLitePath may be empty to skip
// the database export.
type OutputConfig struct {
	CSVPath    string `yaml:"csv_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

// RetryPolicy bounds the transport's retry behavior.
type RetryPolicy struct {
	MaxAttempts    int `yaml:"max_attempts"`
	InitialDelayMs int `yaml:"initial_delay_ms"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// InitialDelay returns the first retry delay as a duration.
func (r RetryPolicy) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMs) * time.Millisecond
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BaseURL:   "https://evaluation-registry.cabinetoffice.gov.uk",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
		DataDir:   "~/.local/share/evalregistry",
		Output: OutputConfig{
			CSVPath:    "evaluations.csv",
			SQLitePath: "evaluations.db",
		},
		Retry: RetryPolicy{
			MaxAttempts:    5,
			InitialDelayMs: 500,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}
	if c.Output.CSVPath == "" {
		return ErrMissingCSVPath
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}
