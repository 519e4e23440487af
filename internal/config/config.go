// Package config loads the application configuration from a yaml file with
// sensible defaults for the cost model and sampling frequency.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the backtester binary.
type Config struct {
	Database Database `yaml:"database"`
	Provider Provider `yaml:"provider"`
	Logging  Logging  `yaml:"logging"`
	Backtest Backtest `yaml:"backtest"`
}

// Database holds the Postgres bar-store connection string.
type Database struct {
	URL string `yaml:"url"`
}

// Provider selects and configures the price-data source.
type Provider struct {
	// Source is "postgres" or "eastmoney".
	Source         string `yaml:"source"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Backtest holds the simulation parameters.
type Backtest struct {
	Ticker                 string  `yaml:"ticker"`
	BenchmarkTicker        string  `yaml:"benchmark_ticker"`
	StartDate              string  `yaml:"start_date"`
	EndDate                string  `yaml:"end_date"`
	InitialCapital         float64 `yaml:"initial_capital"`
	CommissionRate         float64 `yaml:"commission_rate"`
	SlippageRate           float64 `yaml:"slippage_rate"`
	PeriodsPerYear         int     `yaml:"periods_per_year"`
	RiskFreeRate           float64 `yaml:"risk_free_rate"`
	LookbackDays           int     `yaml:"lookback_days"`
	DecisionTimeoutSeconds int     `yaml:"decision_timeout_seconds"`
	DecisionsFile          string  `yaml:"decisions_file"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Provider: Provider{
			Source:         "eastmoney",
			TimeoutSeconds: 30,
		},
		Logging: Logging{
			Level: "info",
		},
		Backtest: Backtest{
			InitialCapital:         100000,
			CommissionRate:         0.0003,
			SlippageRate:           0.001,
			PeriodsPerYear:         252,
			RiskFreeRate:           0.03,
			LookbackDays:           365,
			DecisionTimeoutSeconds: 30,
		},
	}
}

// Load reads the yaml file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
