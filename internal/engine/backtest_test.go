package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/shopspring/decimal"
)

// Monday through Friday of the first week of 2024.
var (
	monday   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	saturday = monday.AddDate(0, 0, 5)
)

type mockPriceProvider struct {
	bars map[string][]types.Candle
	err  error
}

func (m *mockPriceProvider) GetDailyBars(_ context.Context, ticker string, _, _ time.Time) ([]types.Candle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bars[ticker], nil
}

type scriptedDecider struct {
	outputs map[string]string
	errs    map[string]error
	delay   time.Duration

	mu    sync.Mutex
	calls int
}

func (d *scriptedDecider) Decide(ctx context.Context, curDate, _ time.Time, _ types.PortfolioView) (string, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	key := curDate.Format(dateLayout)
	if err, ok := d.errs[key]; ok {
		return "", err
	}
	if out, ok := d.outputs[key]; ok {
		return out, nil
	}
	return `{"action": "hold"}`, nil
}

func dailyBar(ticker string, date time.Time, closePrice float64) types.Candle {
	c := decimal.NewFromFloat(closePrice)
	return types.Candle{
		Ticker: ticker,
		Date:   date,
		Open:   c,
		High:   c,
		Low:    c,
		Close:  c,
		Volume: decimal.NewFromInt(1000000),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func weekBars(ticker string) []types.Candle {
	// Thursday has no bar on purpose.
	return []types.Candle{
		dailyBar(ticker, monday, 10),
		dailyBar(ticker, monday.AddDate(0, 0, 1), 10.5),
		dailyBar(ticker, monday.AddDate(0, 0, 2), 10.4),
		dailyBar(ticker, monday.AddDate(0, 0, 4), 10.8),
	}
}

func TestBacktesterRun(t *testing.T) {
	cfg := NewConfig("600519", monday, saturday, decimal.NewFromInt(100000))
	prices := &mockPriceProvider{bars: map[string][]types.Candle{"600519": weekBars("600519")}}
	decider := &scriptedDecider{
		outputs: map[string]string{
			"2024-01-01": `{"action": "buy", "quantity": 1000}`,
			"2024-01-03": `{"action": "sell", "quantity": 2000}`,
			"2024-01-05": "still bullish, but wait for a dip",
		},
		errs: map[string]error{
			"2024-01-02": errors.New("advisory pipeline unavailable"),
		},
	}

	bt, err := NewBacktester(cfg, prices, decider, discardLogger())
	if err != nil {
		t.Fatalf("NewBacktester() error = %v", err)
	}
	result := bt.Run(context.Background())

	// One value point per weekday, including the missing-bar Thursday.
	if len(result.Values) != 5 {
		t.Fatalf("value points = %d, want 5", len(result.Values))
	}
	// Buy Monday, sell Wednesday; the free-text Friday decision carries no
	// quantity and the Tuesday provider error degrades to a hold.
	if len(result.Trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(result.Trades))
	}

	buy, sell := result.Trades[0], result.Trades[1]
	if buy.Side != types.SideBuy || buy.ExecutedQty != 1000 {
		t.Errorf("first trade = %+v, want buy of 1000", buy)
	}
	if sell.Side != types.SideSell || sell.ExecutedQty != 1000 {
		t.Errorf("second trade = %+v, want sell clamped to 1000", sell)
	}
	if sell.RequestedQty != 2000 {
		t.Errorf("sell requested = %d, want 2000", sell.RequestedQty)
	}

	// Thursday reuses Wednesday's close, so its return is zero.
	thursday := result.Values[3]
	if !thursday.Return.Equal(decimal.Zero) {
		t.Errorf("missing-bar day return = %v, want 0", thursday.Return)
	}
	if !thursday.Value.Equal(result.Values[2].Value) {
		t.Errorf("missing-bar day value = %v, want %v", thursday.Value, result.Values[2].Value)
	}

	if decider.calls != 4 {
		t.Errorf("decider calls = %d, want 4 (no call on the missing-bar day)", decider.calls)
	}
	if result.Performance.TradesCount != 2 {
		t.Errorf("performance trades count = %d, want 2", result.Performance.TradesCount)
	}
}

func TestBacktesterDecisionTimeoutHolds(t *testing.T) {
	cfg := NewConfig("600519", monday, monday.AddDate(0, 0, 1), decimal.NewFromInt(100000))
	cfg.DecisionTimeout = 10 * time.Millisecond

	prices := &mockPriceProvider{bars: map[string][]types.Candle{
		"600519": {dailyBar("600519", monday, 10)},
	}}
	decider := &scriptedDecider{
		delay:   200 * time.Millisecond,
		outputs: map[string]string{"2024-01-01": `{"action": "buy", "quantity": 100}`},
	}

	bt, err := NewBacktester(cfg, prices, decider, discardLogger())
	if err != nil {
		t.Fatalf("NewBacktester() error = %v", err)
	}
	result := bt.Run(context.Background())

	if len(result.Trades) != 0 {
		t.Errorf("trades after timeout = %d, want 0", len(result.Trades))
	}
	if len(result.Values) != 1 {
		t.Errorf("value points = %d, want 1", len(result.Values))
	}
}

func TestBacktesterPriceProviderFailure(t *testing.T) {
	cfg := NewConfig("600519", monday, saturday, decimal.NewFromInt(100000))
	prices := &mockPriceProvider{err: errors.New("datasource down")}
	decider := &scriptedDecider{}

	bt, err := NewBacktester(cfg, prices, decider, discardLogger())
	if err != nil {
		t.Fatalf("NewBacktester() error = %v", err)
	}
	result := bt.Run(context.Background())

	// No bars at all: the run completes with an empty series and zeroed
	// metrics instead of aborting.
	if len(result.Values) != 0 {
		t.Errorf("value points = %d, want 0", len(result.Values))
	}
	if !result.Performance.TotalReturn.Equal(decimal.Zero) {
		t.Errorf("total return = %v, want 0", result.Performance.TotalReturn)
	}
}

func TestBacktesterCancellation(t *testing.T) {
	cfg := NewConfig("600519", monday, saturday, decimal.NewFromInt(100000))
	prices := &mockPriceProvider{bars: map[string][]types.Candle{"600519": weekBars("600519")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bt, err := NewBacktester(cfg, prices, &scriptedDecider{}, discardLogger())
	if err != nil {
		t.Fatalf("NewBacktester() error = %v", err)
	}
	result := bt.Run(ctx)

	if len(result.Values) != 0 {
		t.Errorf("value points after immediate cancel = %d, want 0", len(result.Values))
	}
}

func TestBacktesterIsolatedConcurrentRuns(t *testing.T) {
	newRun := func() *types.Result {
		cfg := NewConfig("600519", monday, saturday, decimal.NewFromInt(100000))
		prices := &mockPriceProvider{bars: map[string][]types.Candle{"600519": weekBars("600519")}}
		decider := &scriptedDecider{outputs: map[string]string{
			"2024-01-01": `{"action": "buy", "quantity": 500}`,
		}}
		bt, err := NewBacktester(cfg, prices, decider, discardLogger())
		if err != nil {
			t.Fatalf("NewBacktester() error = %v", err)
		}
		return bt.Run(context.Background())
	}

	var wg sync.WaitGroup
	results := make([]*types.Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = newRun()
		}(i)
	}
	wg.Wait()

	if len(results[0].Trades) != 1 || len(results[1].Trades) != 1 {
		t.Fatalf("trades = %d/%d, want 1/1", len(results[0].Trades), len(results[1].Trades))
	}
	if !results[0].Values[4].Value.Equal(results[1].Values[4].Value) {
		t.Errorf("concurrent runs diverged: %v vs %v",
			results[0].Values[4].Value, results[1].Values[4].Value)
	}
}

func TestAlignBenchmarkReturns(t *testing.T) {
	points := []types.ValuePoint{
		{Date: monday, Value: decimal.NewFromInt(100), Return: decimal.Zero},
		{Date: monday.AddDate(0, 0, 1), Value: decimal.NewFromInt(102), Return: decimal.RequireFromString("0.02")},
		{Date: monday.AddDate(0, 0, 2), Value: decimal.NewFromInt(101), Return: decimal.RequireFromString("-0.0098")},
	}
	benchBars := map[string]types.Candle{
		"2024-01-01": dailyBar("000300", monday, 100),
		"2024-01-02": dailyBar("000300", monday.AddDate(0, 0, 1), 101),
		// No Wednesday bar: the second pair must be dropped.
	}

	rets, bench := alignBenchmarkReturns(points, benchBars)

	if len(rets) != 1 || len(bench) != 1 {
		t.Fatalf("aligned lengths = %d/%d, want 1/1", len(rets), len(bench))
	}
	if rets[0] != 0.02 {
		t.Errorf("portfolio return = %v, want 0.02", rets[0])
	}
	if diff := bench[0] - 0.01; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("benchmark return = %v, want 0.01", bench[0])
	}
}
