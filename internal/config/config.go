// Package config loads the service configuration from a YAML file.
// Configuration is an explicit struct handed to each component at
// construction; nothing reads it ambiently.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML can carry values like "24h".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"24h\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full runtime configuration.
type Config struct {
	// DatabasePath is the SQLite file holding invoice records.
	DatabasePath string `yaml:"database_path"`

	// ArtifactRoot is the directory holding rendered documents.
	// Created at startup if absent.
	ArtifactRoot string `yaml:"artifact_root"`

	// TaxRate is the additive surcharge applied to the subtotal,
	// as a decimal string ("0.10" = 10%).
	TaxRate string `yaml:"tax_rate"`

	// SweepInterval is how often the overdue sweep runs.
	SweepInterval Duration `yaml:"sweep_interval"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DatabasePath:  "faturarapida.db",
		ArtifactRoot:  "invoices",
		TaxRate:       "0.10",
		SweepInterval: Duration(24 * time.Hour),
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = def.DatabasePath
	}
	if cfg.ArtifactRoot == "" {
		cfg.ArtifactRoot = def.ArtifactRoot
	}
	if cfg.TaxRate == "" {
		cfg.TaxRate = def.TaxRate
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = def.SweepInterval
	}
}

// Validate checks the configuration for values that would fail later.
func (c Config) Validate() error {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return fmt.Errorf("tax_rate %q is not a decimal: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("tax_rate %q must not be negative", c.TaxRate)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval.Std())
	}
	return nil
}

// TaxRateDecimal returns the parsed tax rate. Validate must have
// passed.
func (c Config) TaxRateDecimal() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.TaxRate)
	return rate
}
