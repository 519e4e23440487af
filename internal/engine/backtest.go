package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Backtester replays the decision provider against historical daily bars,
// one weekday at a time. Construction validates the configuration; runtime
// data and provider failures degrade locally and never abort the replay.
type Backtester struct {
	cfg     Config
	prices  PriceProvider
	decider DecisionProvider
	logger  *slog.Logger

	portfolio *types.Portfolio
	executor  *executor
	tracker   *valueTracker
}

func NewBacktester(cfg Config, prices PriceProvider, decider DecisionProvider, logger *slog.Logger) (*Backtester, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	portfolio := types.NewPortfolio(cfg.InitialCapital)
	return &Backtester{
		cfg:       cfg,
		prices:    prices,
		decider:   decider,
		logger:    logger,
		portfolio: portfolio,
		executor:  newExecutor(portfolio, cfg.CommissionRate, cfg.SlippageRate),
		tracker:   newValueTracker(portfolio),
	}, nil
}

// Run executes the replay between Start (inclusive) and End (exclusive) and
// returns the result bundle. Cancelling ctx stops the loop before the next
// date; the bundle then covers the dates already processed.
func (b *Backtester) Run(ctx context.Context) *types.Result {
	bars := b.loadBars(ctx, b.cfg.Ticker)
	var benchBars map[string]types.Candle
	if b.cfg.BenchmarkTicker != "" {
		benchBars = b.loadBars(ctx, b.cfg.BenchmarkTicker)
	}

	progress := initProgressBar(countWeekdays(b.cfg.Start, b.cfg.End))
	lastPrice := decimal.Zero

	for d := b.cfg.Start; d.Before(b.cfg.End); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if ctx.Err() != nil {
			b.logger.Info("backtest cancelled", "date", d.Format(dateLayout))
			break
		}

		candle, ok := bars[d.Format(dateLayout)]
		if !ok {
			// No bar for this weekday: skip execution, carry the value
			// series forward at the last known price.
			if lastPrice.GreaterThan(decimal.Zero) {
				b.tracker.record(d, lastPrice)
			}
			b.logger.Debug("no bar for date", "ticker", b.cfg.Ticker, "date", d.Format(dateLayout))
			progress.Add(1)
			continue
		}

		snapshotPrice := lastPrice
		if !snapshotPrice.GreaterThan(decimal.Zero) {
			snapshotPrice = candle.Open
		}
		decision := b.decide(ctx, d, b.portfolio.GetPortfolioSnapshot(snapshotPrice, d))

		b.executor.execute(decision.Action, decision.Quantity, candle.Close, d)
		b.tracker.record(d, candle.Close)
		lastPrice = candle.Close
		progress.Add(1)
	}

	return b.buildResult(benchBars)
}

// loadBars fetches the daily bars for one ticker keyed by date. Fetch
// failures are data-availability errors: logged, never fatal.
func (b *Backtester) loadBars(ctx context.Context, ticker string) map[string]types.Candle {
	bars := make(map[string]types.Candle)
	candles, err := b.prices.GetDailyBars(ctx, ticker, b.cfg.Start, b.cfg.End)
	if err != nil {
		b.logger.Warn("price provider failed", "ticker", ticker, "err", err)
		return bars
	}
	for _, c := range candles {
		bars[c.Date.Format(dateLayout)] = c
	}
	return bars
}

// decide invokes the decision provider bounded by the configured timeout.
// Any failure degrades to a hold.
func (b *Backtester) decide(ctx context.Context, curDate time.Time, view types.PortfolioView) types.Decision {
	dctx, cancel := context.WithTimeout(ctx, b.cfg.DecisionTimeout)
	defer cancel()

	lookback := curDate.AddDate(0, 0, -b.cfg.LookbackDays)

	type outcome struct {
		raw string
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		raw, err := b.decider.Decide(dctx, curDate, lookback, view)
		ch <- outcome{raw: raw, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			b.logger.Warn("decision provider failed, holding",
				"date", curDate.Format(dateLayout), "err", out.err)
			return types.NewHoldDecision("decision provider error")
		}
		return ParseDecision(out.raw)
	case <-dctx.Done():
		b.logger.Warn("decision provider timed out, holding",
			"date", curDate.Format(dateLayout))
		return types.NewHoldDecision("decision provider timeout")
	}
}

func (b *Backtester) buildResult(benchBars map[string]types.Candle) *types.Result {
	points := b.tracker.series()
	trades := b.executor.ledger()

	perf := calcPerformance(points, trades, b.cfg.PeriodsPerYear, b.cfg.RiskFreeRate)

	rets := periodReturns(points)
	alignedRets, alignedBench := alignBenchmarkReturns(points, benchBars)
	risk := calcRisk(rets, alignedRets, alignedBench,
		perf.Volatility.InexactFloat64(), perf.MaxDrawdown.InexactFloat64())

	return &types.Result{
		Ticker:      b.cfg.Ticker,
		Trades:      trades,
		Values:      points,
		Performance: perf,
		Risk:        risk,
	}
}

// alignBenchmarkReturns pairs portfolio period returns with benchmark
// returns over the same consecutive dates, dropping gaps in the benchmark
// series.
func alignBenchmarkReturns(points []types.ValuePoint, benchBars map[string]types.Candle) ([]float64, []float64) {
	if len(benchBars) == 0 || len(points) < 2 {
		return nil, nil
	}

	var rets, bench []float64
	for i := 1; i < len(points); i++ {
		prev, okPrev := benchBars[points[i-1].Date.Format(dateLayout)]
		cur, okCur := benchBars[points[i].Date.Format(dateLayout)]
		if !okPrev || !okCur || !prev.Close.GreaterThan(decimal.Zero) {
			continue
		}
		rets = append(rets, points[i].Return.InexactFloat64())
		bench = append(bench, cur.Close.Div(prev.Close).Sub(one).InexactFloat64())
	}
	return rets, bench
}

func countWeekdays(start, end time.Time) int {
	count := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Replaying trading days..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
