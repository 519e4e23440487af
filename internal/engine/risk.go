package engine

import (
	"math"
	"sort"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/shopspring/decimal"
)

// Normalization ceilings for the composite market-risk score. Annualized
// volatility at or above 60% and drawdown at or above 50% each saturate
// their half of the 0-10 scale.
const (
	riskScoreVolCeiling = 0.60
	riskScoreDDCeiling  = 0.50
)

// calcRisk derives the tail-risk snapshot. rets is the full period-return
// series; alignedRets/alignedBench are the date-matched pairs used for beta
// and may be nil when no benchmark was supplied. An empty return series
// produces zeros.
func calcRisk(rets, alignedRets, alignedBench []float64, annualVol, maxDrawdown float64) types.RiskMetrics {
	metrics := types.RiskMetrics{
		ValueAtRisk95:     decimal.Zero,
		ExpectedShortfall: decimal.Zero,
		Beta:              decimal.Zero,
		MarketRiskScore:   decimal.Zero,
	}
	if len(rets) > 0 {
		varThreshold := calcValueAtRisk(rets, 0.95)
		metrics.ValueAtRisk95 = decimal.NewFromFloat(varThreshold)
		metrics.ExpectedShortfall = decimal.NewFromFloat(calcExpectedShortfall(rets, varThreshold))
	}
	metrics.Beta = decimal.NewFromFloat(calcBeta(alignedRets, alignedBench))
	metrics.MarketRiskScore = decimal.NewFromFloat(calcMarketRiskScore(annualVol, maxDrawdown))
	return metrics
}

// calcValueAtRisk estimates historical VaR at the given confidence via
// sorted-order linear interpolation, not a parametric fit. The result is the
// return threshold (negative in losing tails).
func calcValueAtRisk(rets []float64, confidence float64) float64 {
	sorted := append([]float64(nil), rets...)
	sort.Float64s(sorted)

	rank := (1.0 - confidence) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// calcExpectedShortfall averages the returns at or below the VaR threshold,
// so it is always <= the threshold itself.
func calcExpectedShortfall(rets []float64, varThreshold float64) float64 {
	var sum float64
	count := 0
	for _, r := range rets {
		if r <= varThreshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return varThreshold
	}
	return sum / float64(count)
}

// calcBeta is covariance(rets, benchmark) / variance(benchmark) over the
// overlapping prefix. Zero without a benchmark or with a flat one.
func calcBeta(rets, benchmark []float64) float64 {
	n := len(rets)
	if len(benchmark) < n {
		n = len(benchmark)
	}
	if n < 2 {
		return 0
	}

	meanR := mean(rets[:n])
	meanB := mean(benchmark[:n])

	var cov, varB float64
	for i := 0; i < n; i++ {
		dr := rets[i] - meanR
		db := benchmark[i] - meanB
		cov += dr * db
		varB += db * db
	}
	if varB == 0 {
		return 0
	}
	return cov / varB
}

// calcMarketRiskScore blends normalized volatility and drawdown magnitude
// into a 0-10 composite, monotonic in both inputs.
func calcMarketRiskScore(annualVol, maxDrawdown float64) float64 {
	volScore := math.Min(1.0, math.Max(0, annualVol)/riskScoreVolCeiling)
	ddScore := math.Min(1.0, math.Max(0, maxDrawdown)/riskScoreDDCeiling)
	return 10.0 * (0.5*volScore + 0.5*ddScore)
}
