package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantworks/backtester/market"
)

// Config represents the complete run configuration. Anything invalid here is
// a configuration error and aborts before the simulation starts.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Sweep    SweepConfig    `json:"sweep,omitempty" yaml:"sweep,omitempty"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains the simulated account parameters.
type AccountConfig struct {
	StartingCash float64 `json:"starting_cash" yaml:"starting_cash"`
	Compound     bool    `json:"compound" yaml:"compound"`
	AbleToExceed bool    `json:"able_to_exceed" yaml:"able_to_exceed"`
	MinToEnter   int     `json:"min_to_enter" yaml:"min_to_enter"`
}

// DataConfig locates and trims the price data.
type DataConfig struct {
	Dir         string `json:"dir" yaml:"dir"`
	Rebalance   string `json:"rebalance" yaml:"rebalance"`
	MaxLookback int    `json:"max_lookback" yaml:"max_lookback"`
	Start       string `json:"start,omitempty" yaml:"start,omitempty"`
	End         string `json:"end,omitempty" yaml:"end,omitempty"`
}

// StrategyConfig names the strategy and its fixed parameters.
type StrategyConfig struct {
	Name   string             `json:"name" yaml:"name"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// SweepConfig holds the optimisation grid: parameter name → candidate
// values. An empty grid means a single run.
type SweepConfig struct {
	Params      map[string][]float64 `json:"params,omitempty" yaml:"params,omitempty"`
	Parallelism int                  `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	LotsFile   string `json:"lots_file,omitempty" yaml:"lots_file,omitempty"`
	WealthFile string `json:"wealth_file,omitempty" yaml:"wealth_file,omitempty"`
	ReportFile string `json:"report_file,omitempty" yaml:"report_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content, YAML tried first).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration can start a run.
func (c *Config) Validate() error {
	if c.Account.StartingCash <= 0 {
		return fmt.Errorf("account.starting_cash must be positive")
	}
	if c.Account.MinToEnter < 0 {
		return fmt.Errorf("account.min_to_enter must not be negative")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if _, err := market.RebalanceFromString(c.Data.Rebalance); err != nil {
		return fmt.Errorf("data.rebalance: %w", err)
	}
	if c.Data.MaxLookback < 0 {
		return fmt.Errorf("data.max_lookback must not be negative")
	}
	for _, field := range []struct{ name, value string }{
		{"data.start", c.Data.Start},
		{"data.end", c.Data.End},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", field.value); err != nil {
			return fmt.Errorf("%s: want YYYY-MM-DD, got %q", field.name, field.value)
		}
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	for name, vals := range c.Sweep.Params {
		if len(vals) == 0 {
			return fmt.Errorf("sweep.params.%s has no values", name)
		}
	}
	switch strings.ToLower(c.Journal.Type) {
	case "csv":
		if c.Journal.LotsFile == "" || c.Journal.WealthFile == "" {
			return fmt.Errorf("journal lots_file and wealth_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	return nil
}

// Rebalance returns the parsed rebalance frequency. Call Validate first.
func (c *Config) Rebalance() market.Rebalance {
	r, _ := market.RebalanceFromString(c.Data.Rebalance)
	return r
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingCash: 100000,
			AbleToExceed: true,
			MinToEnter:   10,
		},
		Data: DataConfig{
			Rebalance:   "daily",
			MaxLookback: 200,
		},
		Journal: JournalConfig{
			Type:       "csv",
			LotsFile:   "./trades.csv",
			WealthFile: "./wealth.csv",
		},
	}
}
