package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/optionsim/pricing"
)

// Config represents the complete simulation configuration
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Sizing    SizingConfig    `json:"sizing" yaml:"sizing"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

// AccountConfig contains ledger initialization parameters
type AccountConfig struct {
	StartingCash float64 `json:"starting_cash" yaml:"starting_cash"`
}

// ExecutionConfig contains fill-model parameters
type ExecutionConfig struct {
	CommissionPerTrade float64 `json:"commission_per_trade" yaml:"commission_per_trade"`
	SlippagePct        float64 `json:"slippage_pct" yaml:"slippage_pct"`
}

// SizingConfig contains order-sizing parameters
type SizingConfig struct {
	DailyBudgetPct       float64 `json:"daily_budget_pct" yaml:"daily_budget_pct"`
	MaxContractsPerTrade int64   `json:"max_contracts_per_trade" yaml:"max_contracts_per_trade"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "parquet"
	HistoryFile   string `json:"history_file,omitempty" yaml:"history_file,omitempty"`
	SnapshotsFile string `json:"snapshots_file,omitempty" yaml:"snapshots_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.StartingCash <= 0 {
		return fmt.Errorf("account.starting_cash must be positive")
	}
	if c.Execution.CommissionPerTrade < 0 {
		return fmt.Errorf("execution.commission_per_trade must be non-negative")
	}
	if c.Execution.SlippagePct < 0 {
		return fmt.Errorf("execution.slippage_pct must be non-negative")
	}
	if c.Sizing.DailyBudgetPct <= 0 || c.Sizing.DailyBudgetPct > 1 {
		return fmt.Errorf("sizing.daily_budget_pct must be between 0 and 1")
	}
	if c.Sizing.MaxContractsPerTrade < 1 {
		return fmt.Errorf("sizing.max_contracts_per_trade must be at least 1")
	}
	switch c.Journal.Type {
	case "csv", "parquet":
		if c.Journal.HistoryFile == "" || c.Journal.SnapshotsFile == "" {
			return fmt.Errorf("journal history_file and snapshots_file required for %s type", c.Journal.Type)
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'parquet'")
	}
	return nil
}

// Default returns a configuration with the standard run parameters
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingCash: 100000,
		},
		Execution: ExecutionConfig{
			CommissionPerTrade: 1.0,
			SlippagePct:        0.002,
		},
		Sizing: SizingConfig{
			DailyBudgetPct:       0.02,
			MaxContractsPerTrade: 5,
		},
		Journal: JournalConfig{
			Type:          "csv",
			HistoryFile:   "./sim_history.csv",
			SnapshotsFile: "./sim_snapshots.csv",
		},
	}
}

// StartingCash returns the account balance as an exact decimal.
func (c *Config) StartingCash() decimal.Decimal {
	return decimal.NewFromFloat(c.Account.StartingCash)
}

// BudgetPct returns the per-candidate budget fraction as an exact decimal.
func (c *Config) BudgetPct() decimal.Decimal {
	return decimal.NewFromFloat(c.Sizing.DailyBudgetPct)
}

// Model builds the fill model from the execution parameters.
func (c *Config) Model() pricing.Model {
	return pricing.Model{
		SlippagePct: decimal.NewFromFloat(c.Execution.SlippagePct),
		Commission:  decimal.NewFromFloat(c.Execution.CommissionPerTrade),
	}
}
