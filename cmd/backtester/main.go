package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1517005260/AShareAgent-sub001/internal/config"
	"github.com/1517005260/AShareAgent-sub001/internal/engine"
	"github.com/1517005260/AShareAgent-sub001/internal/provider"
	"github.com/1517005260/AShareAgent-sub001/internal/repository"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type cliFlags struct {
	configPath    string
	ticker        string
	benchmark     string
	startDate     string
	endDate       string
	capital       float64
	decisionsFile string
	source        string
	csvOut        string
	jsonOut       string
}

func main() {
	// Optional .env overlay for local runs, e.g. DATABASE_URL.
	_ = godotenv.Load()

	flags := &cliFlags{}
	rootCmd := &cobra.Command{
		Use:          "backtester",
		Short:        "Replay a trading strategy against historical A-share daily bars",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to yaml config file")
	rootCmd.Flags().StringVar(&flags.ticker, "ticker", "", "six-digit A-share ticker, e.g. 600519")
	rootCmd.Flags().StringVar(&flags.benchmark, "benchmark", "", "optional benchmark ticker for beta")
	rootCmd.Flags().StringVar(&flags.startDate, "start", "", "start date (inclusive), YYYY-MM-DD")
	rootCmd.Flags().StringVar(&flags.endDate, "end", "", "end date (exclusive), YYYY-MM-DD")
	rootCmd.Flags().Float64Var(&flags.capital, "capital", 0, "initial capital")
	rootCmd.Flags().StringVar(&flags.decisionsFile, "decisions", "", "JSONL file of pre-recorded advisory outputs")
	rootCmd.Flags().StringVar(&flags.source, "source", "", "price source: eastmoney or postgres")
	rootCmd.Flags().StringVar(&flags.csvOut, "csv", "", "write the trade ledger to this CSV file")
	rootCmd.Flags().StringVar(&flags.jsonOut, "json", "", "write the full result bundle to this JSON file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(flags *cliFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, flags)

	logger := config.NewLogger(cfg.Logging.Level)

	engineCfg, err := buildEngineConfig(cfg)
	if err != nil {
		return err
	}

	prices, cleanup, err := buildPriceProvider(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Backtest.DecisionsFile == "" {
		return fmt.Errorf("a decisions file is required (--decisions or backtest.decisions_file)")
	}
	decider, err := provider.NewReplayDecider(cfg.Backtest.DecisionsFile)
	if err != nil {
		return err
	}

	bt, err := engine.NewBacktester(engineCfg, prices, decider, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := bt.Run(ctx)
	fmt.Println()
	engine.PrintResult(os.Stdout, result)

	if flags.csvOut != "" {
		if err := engine.WriteTradesCSVFile(flags.csvOut, result.Trades); err != nil {
			return err
		}
	}
	if flags.jsonOut != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(flags.jsonOut, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}

func applyFlags(cfg *config.Config, flags *cliFlags) {
	if flags.ticker != "" {
		cfg.Backtest.Ticker = flags.ticker
	}
	if flags.benchmark != "" {
		cfg.Backtest.BenchmarkTicker = flags.benchmark
	}
	if flags.startDate != "" {
		cfg.Backtest.StartDate = flags.startDate
	}
	if flags.endDate != "" {
		cfg.Backtest.EndDate = flags.endDate
	}
	if flags.capital > 0 {
		cfg.Backtest.InitialCapital = flags.capital
	}
	if flags.decisionsFile != "" {
		cfg.Backtest.DecisionsFile = flags.decisionsFile
	}
	if flags.source != "" {
		cfg.Provider.Source = flags.source
	}
	if url := os.Getenv("DATABASE_URL"); url != "" && cfg.Database.URL == "" {
		cfg.Database.URL = url
	}
}

func buildEngineConfig(cfg *config.Config) (engine.Config, error) {
	start, err := time.Parse(dateLayout, cfg.Backtest.StartDate)
	if err != nil {
		return engine.Config{}, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse(dateLayout, cfg.Backtest.EndDate)
	if err != nil {
		return engine.Config{}, fmt.Errorf("parse end date: %w", err)
	}

	engineCfg := engine.NewConfig(cfg.Backtest.Ticker, start, end, decimal.NewFromFloat(cfg.Backtest.InitialCapital))
	engineCfg.BenchmarkTicker = cfg.Backtest.BenchmarkTicker
	engineCfg.CommissionRate = decimal.NewFromFloat(cfg.Backtest.CommissionRate)
	engineCfg.SlippageRate = decimal.NewFromFloat(cfg.Backtest.SlippageRate)
	engineCfg.PeriodsPerYear = cfg.Backtest.PeriodsPerYear
	engineCfg.RiskFreeRate = decimal.NewFromFloat(cfg.Backtest.RiskFreeRate)
	engineCfg.LookbackDays = cfg.Backtest.LookbackDays
	engineCfg.DecisionTimeout = time.Duration(cfg.Backtest.DecisionTimeoutSeconds) * time.Second
	return engineCfg, nil
}

func buildPriceProvider(cfg *config.Config) (engine.PriceProvider, func(), error) {
	switch cfg.Provider.Source {
	case "postgres":
		db, err := repository.NewDatabase(cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect bar store: %w", err)
		}
		return &db, db.Close, nil
	case "eastmoney", "":
		client := provider.NewEastmoneyClient(cfg.Provider.BaseURL,
			time.Duration(cfg.Provider.TimeoutSeconds)*time.Second)
		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown price source %q", cfg.Provider.Source)
	}
}
