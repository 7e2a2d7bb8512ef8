package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgerly/internal/statement"
)

// FileName is the config file created by init.
const FileName = "ledgerly.yaml"

// Environment variables that override the file.
const (
	EnvConfig   = "LEDGERLY_CONFIG"
	EnvDatabase = "LEDGERLY_DB"
	EnvLogLevel = "LEDGERLY_LOG_LEVEL"
)

// Config represents the top-level ledgerly.yaml configuration.
type Config struct {
	Owner       OwnerConfig       `yaml:"owner"`
	Locale      LocaleConfig      `yaml:"locale"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	MinimumDue  MinimumDueConfig  `yaml:"minimum_due"`
	CreditLimit CreditLimitConfig `yaml:"credit_limit"`
}

// OwnerConfig identifies whose accounts this ledger holds.
type OwnerConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LocaleConfig sets display defaults.
type LocaleConfig struct {
	Currency string `yaml:"currency"` // ISO 4217, e.g. "INR"
	Locale   string `yaml:"locale"`   // BCP 47, e.g. "en-IN"
}

// DatabaseConfig locates the SQLite file. Relative paths are resolved
// against the directory holding ledgerly.yaml.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// MinimumDueConfig is the card minimum-due rule. Amounts are decimal strings.
type MinimumDueConfig struct {
	Percent string            `yaml:"percent"`
	Floor   string            `yaml:"floor"`
	Floors  map[string]string `yaml:"floors,omitempty"` // per currency
}

// CreditLimitConfig controls credit limit enforcement on submission.
type CreditLimitConfig struct {
	Enforce bool `yaml:"enforce"`
}

// Load reads a ledgerly.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(ownerName, currency string) *Config {
	return &Config{
		Owner: OwnerConfig{
			ID:   "default",
			Name: ownerName,
		},
		Locale: LocaleConfig{
			Currency: strings.ToUpper(currency),
			Locale:   "en-US",
		},
		Database: DatabaseConfig{
			Path: "ledgerly.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		MinimumDue: MinimumDueConfig{
			Percent: "5",
			Floor:   "200",
		},
	}
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// DatabasePath returns the database location for a config file in dir.
func (c *Config) DatabasePath(dir string) string {
	if c.Database.Path == "" || filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(dir, c.Database.Path)
}

// Policy parses the minimum-due rule.
func (c *Config) Policy() (statement.Policy, error) {
	p := statement.Policy{Percent: decimal.Zero, Floor: decimal.Zero}
	var err error
	if c.MinimumDue.Percent != "" {
		if p.Percent, err = decimal.NewFromString(c.MinimumDue.Percent); err != nil {
			return statement.Policy{}, fmt.Errorf("parsing minimum_due.percent: %w", err)
		}
	}
	if c.MinimumDue.Floor != "" {
		if p.Floor, err = decimal.NewFromString(c.MinimumDue.Floor); err != nil {
			return statement.Policy{}, fmt.Errorf("parsing minimum_due.floor: %w", err)
		}
	}
	if p.Percent.IsNegative() || p.Percent.GreaterThan(decimal.NewFromInt(100)) {
		return statement.Policy{}, fmt.Errorf("minimum_due.percent %s outside 0..100", p.Percent)
	}
	if len(c.MinimumDue.Floors) > 0 {
		p.Floors = make(map[string]decimal.Decimal, len(c.MinimumDue.Floors))
		for cur, s := range c.MinimumDue.Floors {
			f, err := decimal.NewFromString(s)
			if err != nil {
				return statement.Policy{}, fmt.Errorf("parsing minimum_due.floors.%s: %w", cur, err)
			}
			p.Floors[strings.ToUpper(cur)] = f
		}
	}
	return p, nil
}
