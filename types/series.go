package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuePoint is one sample of the portfolio value time series. Return is the
// fractional change against the previous point; the first point carries 0.
type ValuePoint struct {
	Date   time.Time       `json:"date"`
	Value  decimal.Decimal `json:"value"`
	Return decimal.Decimal `json:"return"`
}
