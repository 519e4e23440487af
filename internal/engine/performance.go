package engine

import (
	"math"
	"sync"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/shopspring/decimal"
)

// profitFactorCap stands in for an infinite profit factor when there are
// winning round trips but no losing ones.
var profitFactorCap = decimal.NewFromInt(9999)

// roundTrip is the realized result of one sell matched FIFO against earlier
// buy lots, commissions included on both legs.
type roundTrip struct {
	pnl decimal.Decimal
}

// calcPerformance derives the full performance snapshot from the value
// series and trade ledger. Degenerate inputs (one point, empty ledger)
// produce zeros rather than errors.
func calcPerformance(
	points []types.ValuePoint,
	trades []types.Trade,
	periodsPerYear int,
	riskFreeRate decimal.Decimal,
) types.PerformanceMetrics {
	metrics := types.PerformanceMetrics{
		TotalReturn:      decimal.Zero,
		AnnualizedReturn: decimal.Zero,
		Volatility:       decimal.Zero,
		SharpeRatio:      decimal.Zero,
		MaxDrawdown:      decimal.Zero,
		TradesCount:      len(trades),
		WinRate:          decimal.Zero,
		ProfitFactor:     decimal.Zero,
	}
	if len(points) > 1 {
		rets := periodReturns(points)

		var wg sync.WaitGroup
		wg.Add(4)
		go func() {
			metrics.TotalReturn, metrics.AnnualizedReturn = calcReturns(points, periodsPerYear, &wg)
		}()
		go func() {
			metrics.Volatility = calcVolatility(rets, periodsPerYear, &wg)
		}()
		go func() {
			metrics.SharpeRatio = calcSharpeRatio(rets, periodsPerYear, riskFreeRate, &wg)
		}()
		go func() {
			metrics.MaxDrawdown = calcMaxDrawdown(points, &wg)
		}()
		wg.Wait()
	}

	trips := buildRoundTrips(trades)
	metrics.WinRate = calcWinRate(trips)
	metrics.ProfitFactor = calcProfitFactor(trips)
	return metrics
}

// periodReturns computes the fractional returns between consecutive value
// points, len(points)-1 entries.
func periodReturns(points []types.ValuePoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		if !prev.GreaterThan(decimal.Zero) {
			rets = append(rets, 0)
			continue
		}
		rets = append(rets, points[i].Value.Div(prev).Sub(one).InexactFloat64())
	}
	return rets
}

func calcReturns(points []types.ValuePoint, periodsPerYear int, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal) {
	defer wg.Done()

	first := points[0].Value
	last := points[len(points)-1].Value
	if !first.GreaterThan(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	total := last.Div(first).Sub(one)

	growth := 1.0 + total.InexactFloat64()
	if growth <= 0 {
		return total, decimal.NewFromInt(-1)
	}
	exponent := float64(periodsPerYear) / float64(len(points))
	annualized := math.Pow(growth, exponent) - 1.0

	return total, decimal.NewFromFloat(annualized)
}

func calcVolatility(rets []float64, periodsPerYear int, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	vol := annualizedVolatility(rets, periodsPerYear)
	return decimal.NewFromFloat(vol)
}

func calcSharpeRatio(rets []float64, periodsPerYear int, riskFreeRate decimal.Decimal, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	vol := annualizedVolatility(rets, periodsPerYear)
	if vol == 0 {
		return decimal.Zero
	}
	annualMean := mean(rets) * float64(periodsPerYear)
	sharpe := (annualMean - riskFreeRate.InexactFloat64()) / vol
	return decimal.NewFromFloat(sharpe)
}

func calcMaxDrawdown(points []types.ValuePoint, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	peak := decimal.Zero
	maxDD := decimal.Zero
	for _, p := range points {
		if p.Value.GreaterThan(peak) {
			peak = p.Value
		}
		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(p.Value).Div(peak)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// buildRoundTrips matches sells FIFO against open buy lots. Each sell closes
// (part of) the oldest lots and yields one realized round trip with
// commissions from both legs baked into the P&L.
func buildRoundTrips(trades []types.Trade) []roundTrip {
	type lot struct {
		qty          int64
		costPerShare decimal.Decimal
	}

	var lots []lot
	var trips []roundTrip

	for _, tr := range trades {
		if tr.ExecutedQty <= 0 {
			continue
		}
		qtyDec := decimal.NewFromInt(tr.ExecutedQty)

		switch tr.Side {
		case types.SideBuy:
			lots = append(lots, lot{
				qty:          tr.ExecutedQty,
				costPerShare: tr.FillPrice.Add(tr.Commission.Div(qtyDec)),
			})
		case types.SideSell:
			netPerShare := tr.FillPrice.Sub(tr.Commission.Div(qtyDec))
			remaining := tr.ExecutedQty
			pnl := decimal.Zero
			matched := int64(0)

			for remaining > 0 && len(lots) > 0 {
				matchQty := lots[0].qty
				if remaining < matchQty {
					matchQty = remaining
				}
				pnl = pnl.Add(netPerShare.Sub(lots[0].costPerShare).Mul(decimal.NewFromInt(matchQty)))
				matched += matchQty
				remaining -= matchQty
				lots[0].qty -= matchQty
				if lots[0].qty == 0 {
					lots = lots[1:]
				}
			}
			if matched > 0 {
				trips = append(trips, roundTrip{pnl: pnl})
			}
		}
	}
	return trips
}

func calcWinRate(trips []roundTrip) decimal.Decimal {
	if len(trips) == 0 {
		return decimal.Zero
	}
	wins := 0
	for _, tr := range trips {
		if tr.pnl.GreaterThan(decimal.Zero) {
			wins++
		}
	}
	return decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(len(trips))))
}

func calcProfitFactor(trips []roundTrip) decimal.Decimal {
	grossWin := decimal.Zero
	grossLoss := decimal.Zero
	for _, tr := range trips {
		switch {
		case tr.pnl.GreaterThan(decimal.Zero):
			grossWin = grossWin.Add(tr.pnl)
		case tr.pnl.LessThan(decimal.Zero):
			grossLoss = grossLoss.Add(tr.pnl.Abs())
		}
	}

	switch {
	case grossLoss.GreaterThan(decimal.Zero):
		pf := grossWin.Div(grossLoss)
		if pf.GreaterThan(profitFactorCap) {
			return profitFactorCap
		}
		return pf
	case grossWin.GreaterThan(decimal.Zero):
		return profitFactorCap
	default:
		return decimal.Zero
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev is the n-1 denominator standard deviation.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var varianceSum float64
	for _, x := range xs {
		diff := x - m
		varianceSum += diff * diff
	}
	return math.Sqrt(varianceSum / float64(len(xs)-1))
}

func annualizedVolatility(rets []float64, periodsPerYear int) float64 {
	return sampleStdDev(rets) * math.Sqrt(float64(periodsPerYear))
}
