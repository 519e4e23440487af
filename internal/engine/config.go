package engine

import (
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var InvalidDateRangeErr = errors.New("start date must be before end date")
var InvalidCapitalErr = errors.New("initial capital must be positive")
var InvalidTickerErr = errors.New("ticker must be a six-digit A-share symbol")

// A-share symbols are six digits, e.g. 600519 or 000001.
var tickerPattern = regexp.MustCompile(`^\d{6}$`)

type Config struct {
	Ticker          string
	BenchmarkTicker string
	Start           time.Time
	End             time.Time
	InitialCapital  decimal.Decimal
	CommissionRate  decimal.Decimal
	SlippageRate    decimal.Decimal
	PeriodsPerYear  int
	RiskFreeRate    decimal.Decimal
	LookbackDays    int
	DecisionTimeout time.Duration
}

// NewConfig returns a Config with the documented cost and sampling defaults:
// commission 0.0003, slippage 0.001, 252 daily periods per year.
func NewConfig(ticker string, start, end time.Time, initialCapital decimal.Decimal) Config {
	return Config{
		Ticker:          ticker,
		Start:           start,
		End:             end,
		InitialCapital:  initialCapital,
		CommissionRate:  decimal.NewFromFloat(0.0003),
		SlippageRate:    decimal.NewFromFloat(0.001),
		PeriodsPerYear:  252,
		RiskFreeRate:    decimal.NewFromFloat(0.03),
		LookbackDays:    365,
		DecisionTimeout: 30 * time.Second,
	}
}

// validate enforces the fail-fast construction contract. Anything wrong here
// is a configuration error, never silently corrected.
func (c *Config) validate() error {
	if !c.Start.Before(c.End) {
		return InvalidDateRangeErr
	}
	if !c.InitialCapital.GreaterThan(decimal.Zero) {
		return InvalidCapitalErr
	}
	if !tickerPattern.MatchString(c.Ticker) {
		return InvalidTickerErr
	}
	if c.BenchmarkTicker != "" && !tickerPattern.MatchString(c.BenchmarkTicker) {
		return InvalidTickerErr
	}
	return nil
}
