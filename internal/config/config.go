// Package config loads sheetdb settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds settings that apply to every command. Command-line flags
// override them.
type Config struct {
	LogFile     string `env:"SHEETDB_LOG_FILE" envDefault:"sheetdb.log"`
	LogLevel    string `env:"SHEETDB_LOG_LEVEL" envDefault:"info"`
	BatchSize   int    `env:"SHEETDB_BATCH_SIZE" envDefault:"10000"`
	PreviewRows int    `env:"SHEETDB_PREVIEW_ROWS" envDefault:"10"`
	// NoColor disables coloured console output when set to any value.
	NoColor string `env:"NO_COLOR"`
}

// Colorless reports whether console colours are disabled.
func (c *Config) Colorless() bool {
	return c.NoColor != ""
}

// Load parses the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("load config: SHEETDB_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("load config: SHEETDB_PREVIEW_ROWS must not be negative, got %d", c.PreviewRows)
	}
	return nil
}
