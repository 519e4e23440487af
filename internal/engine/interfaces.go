package engine

import (
	"context"
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"
)

// PriceProvider supplies daily OHLCV bars for a ticker. Implementations may
// return an empty slice or an error; the driver treats both as recoverable.
type PriceProvider interface {
	GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Candle, error)
}

// DecisionProvider produces the raw advisory payload for one simulated day.
// The payload may be JSON or free text; it is normalized by ParseDecision.
// A slow or failing provider degrades to a hold, it never aborts the run.
type DecisionProvider interface {
	Decide(ctx context.Context, curDate, lookbackDate time.Time, view types.PortfolioView) (string, error)
}
