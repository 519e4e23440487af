package types

import (
	"github.com/shopspring/decimal"
)

// PerformanceMetrics is a derived snapshot over the value series and trade
// ledger. Recomputed as a whole, never partially updated.
type PerformanceMetrics struct {
	TotalReturn      decimal.Decimal `json:"totalReturn"`
	AnnualizedReturn decimal.Decimal `json:"annualizedReturn"`
	Volatility       decimal.Decimal `json:"volatility"`
	SharpeRatio      decimal.Decimal `json:"sharpeRatio"`
	MaxDrawdown      decimal.Decimal `json:"maxDrawdown"`
	TradesCount      int             `json:"tradesCount"`
	WinRate          decimal.Decimal `json:"winRate"`
	// ProfitFactor is capped at 9999 when there are winning round trips but
	// no losing ones, so the field stays finite.
	ProfitFactor decimal.Decimal `json:"profitFactor"`
}

type RiskMetrics struct {
	ValueAtRisk95     decimal.Decimal `json:"valueAtRisk95"`
	ExpectedShortfall decimal.Decimal `json:"expectedShortfall"`
	Beta              decimal.Decimal `json:"beta"`
	MarketRiskScore   decimal.Decimal `json:"marketRiskScore"`
}

// Result is the output bundle of one backtest run.
type Result struct {
	Ticker      string             `json:"ticker"`
	Trades      []Trade            `json:"trades"`
	Values      []ValuePoint       `json:"values"`
	Performance PerformanceMetrics `json:"performance"`
	Risk        RiskMetrics        `json:"risk"`
}
