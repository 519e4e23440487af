package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the single-asset cash/stock aggregate for one backtest run.
// The driver owns it; the executor is the only writer during a run.
type Portfolio struct {
	Cash      decimal.Decimal
	Quantity  int64
	LastValue decimal.Decimal
}

func NewPortfolio(initialCash decimal.Decimal) *Portfolio {
	return &Portfolio{
		Cash:      initialCash,
		Quantity:  0,
		LastValue: initialCash,
	}
}

// Value marks the portfolio to the given price.
func (p *Portfolio) Value(price decimal.Decimal) decimal.Decimal {
	return p.Cash.Add(price.Mul(decimal.NewFromInt(p.Quantity)))
}

type PortfolioView struct {
	Cash      decimal.Decimal `json:"cash"`
	Quantity  int64           `json:"quantity"`
	LastPrice decimal.Decimal `json:"lastPrice"`
	Value     decimal.Decimal `json:"value"`
	Time      time.Time       `json:"time"`
}

func (p *Portfolio) GetPortfolioSnapshot(lastPrice decimal.Decimal, curTime time.Time) PortfolioView {
	return PortfolioView{
		Cash:      p.Cash,
		Quantity:  p.Quantity,
		LastPrice: lastPrice,
		Value:     p.Value(lastPrice),
		Time:      curTime,
	}
}
