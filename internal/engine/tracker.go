package engine

import (
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/shopspring/decimal"
)

// valueTracker accumulates the portfolio value time series, one point per
// simulated period. Points are never reordered or rewritten.
type valueTracker struct {
	portfolio *types.Portfolio
	points    []types.ValuePoint
}

func newValueTracker(p *types.Portfolio) *valueTracker {
	return &valueTracker{portfolio: p}
}

// record marks the portfolio to price and appends a ValuePoint. The first
// point carries a return of 0 by convention.
func (t *valueTracker) record(date time.Time, price decimal.Decimal) types.ValuePoint {
	value := t.portfolio.Value(price)

	ret := decimal.Zero
	if len(t.points) > 0 {
		prev := t.points[len(t.points)-1].Value
		if prev.GreaterThan(decimal.Zero) {
			ret = value.Div(prev).Sub(one)
		}
	}

	point := types.ValuePoint{Date: date, Value: value, Return: ret}
	t.points = append(t.points, point)
	t.portfolio.LastValue = value
	return point
}

func (t *valueTracker) series() []types.ValuePoint {
	return t.points
}
