package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/jackc/pgx/v5"
)

// GetDailyBars retrieves the daily candles for a ticker between start
// (inclusive) and end (exclusive), ordered by date. It satisfies the
// engine's PriceProvider contract.
func (db *Database) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Candle, error) {
	stock, err := db.stocks.GetStockByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s: %w", ticker, ErrStockNotFound)
		}
		return nil, err
	}

	bars, err := db.bars.GetDailyBars(ctx, stock.ID, start, end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoBars
		}
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	return convertBars(bars, ticker), nil
}

func convertBars(bars []barRow, ticker string) []types.Candle {
	var candles []types.Candle
	for _, b := range bars {
		candles = append(candles, types.Candle{
			Ticker: ticker,
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return candles
}
