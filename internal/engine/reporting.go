package engine

import (
	"fmt"
	"io"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PrintResult writes the human-readable report for one run.
func PrintResult(w io.Writer, res *types.Result) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Ticker:                %s\n", res.Ticker)
	if len(res.Values) > 0 {
		fmt.Fprintf(w, "Start Date:            %s\n", res.Values[0].Date.Format(dateLayout))
		fmt.Fprintf(w, "End Date:              %s\n", res.Values[len(res.Values)-1].Date.Format(dateLayout))
		fmt.Fprintf(w, "Final Value:           %s\n", res.Values[len(res.Values)-1].Value.StringFixed(2))
	}
	fmt.Fprintf(w, "Total Trades:          %d\n", res.Performance.TradesCount)

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Total Return:          %s%%\n", res.Performance.TotalReturn.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Annualized Return:     %s%%\n", res.Performance.AnnualizedReturn.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Volatility:            %s%%\n", res.Performance.Volatility.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", res.Performance.SharpeRatio.StringFixed(4))
	fmt.Fprintf(w, "Max Drawdown:          %s%%\n", res.Performance.MaxDrawdown.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Win Rate:              %s%%\n", res.Performance.WinRate.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Profit Factor:         %s\n", res.Performance.ProfitFactor.StringFixed(4))

	fmt.Fprintln(w, "\n-- Risk --")
	fmt.Fprintf(w, "VaR (95%%):             %s%%\n", res.Risk.ValueAtRisk95.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Expected Shortfall:    %s%%\n", res.Risk.ExpectedShortfall.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Beta:                  %s\n", res.Risk.Beta.StringFixed(4))
	fmt.Fprintf(w, "Market Risk Score:     %s / 10\n", res.Risk.MarketRiskScore.StringFixed(2))

	fmt.Fprintln(w, "===========================")
}
