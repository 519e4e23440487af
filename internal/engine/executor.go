package engine

import (
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// executor applies decisions to the portfolio under commission and slippage
// rules. Infeasible requests are clamped to the executable quantity, never
// rejected: a long replay must not abort on an oversized order.
type executor struct {
	portfolio      *types.Portfolio
	commissionRate decimal.Decimal
	slippageRate   decimal.Decimal
	trades         []types.Trade
}

func newExecutor(p *types.Portfolio, commissionRate, slippageRate decimal.Decimal) *executor {
	return &executor{
		portfolio:      p,
		commissionRate: commissionRate,
		slippageRate:   slippageRate,
	}
}

// execute fills as much of the requested quantity as cash or inventory
// allows and returns the executed quantity. Zero or negative requests and
// hold actions are no-ops.
func (e *executor) execute(action types.Action, requestedQty int64, marketPrice decimal.Decimal, date time.Time) int64 {
	if requestedQty <= 0 || marketPrice.LessThanOrEqual(decimal.Zero) {
		return 0
	}

	switch action {
	case types.ActionBuy:
		return e.buy(requestedQty, marketPrice, date)
	case types.ActionSell:
		return e.sell(requestedQty, marketPrice, date)
	default:
		return 0
	}
}

func (e *executor) buy(requestedQty int64, marketPrice decimal.Decimal, date time.Time) int64 {
	execPrice := marketPrice.Mul(one.Add(e.slippageRate))
	costPerShare := execPrice.Mul(one.Add(e.commissionRate))

	qty := e.portfolio.Cash.Div(costPerShare).Floor().IntPart()
	if requestedQty < qty {
		qty = requestedQty
	}
	// Division rounding may overstate affordability by one share.
	for qty > 0 && costPerShare.Mul(decimal.NewFromInt(qty)).GreaterThan(e.portfolio.Cash) {
		qty--
	}
	if qty <= 0 {
		return 0
	}

	notional := execPrice.Mul(decimal.NewFromInt(qty))
	commission := notional.Mul(e.commissionRate)

	e.portfolio.Cash = e.portfolio.Cash.Sub(notional).Sub(commission)
	e.portfolio.Quantity += qty
	e.trades = append(e.trades, types.NewTrade(date, types.SideBuy, requestedQty, qty, execPrice, commission))
	return qty
}

func (e *executor) sell(requestedQty int64, marketPrice decimal.Decimal, date time.Time) int64 {
	qty := e.portfolio.Quantity
	if requestedQty < qty {
		qty = requestedQty
	}
	if qty <= 0 {
		return 0
	}

	execPrice := marketPrice.Mul(one.Sub(e.slippageRate))
	gross := execPrice.Mul(decimal.NewFromInt(qty))
	commission := gross.Mul(e.commissionRate)

	e.portfolio.Cash = e.portfolio.Cash.Add(gross).Sub(commission)
	e.portfolio.Quantity -= qty
	e.trades = append(e.trades, types.NewTrade(date, types.SideSell, requestedQty, qty, execPrice, commission))
	return qty
}

// ledger returns the ordered append-only trade ledger.
func (e *executor) ledger() []types.Trade {
	return e.trades
}
