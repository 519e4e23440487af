package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

var ErrEmptyKlineResponse = errors.New("quote api returned no klines")

const defaultEastmoneyBaseURL = "https://push2his.eastmoney.com"

// EastmoneyClient fetches forward-adjusted daily klines from the Eastmoney
// quote API. It satisfies the engine's PriceProvider contract.
type EastmoneyClient struct {
	client *resty.Client
}

func NewEastmoneyClient(baseURL string, timeout time.Duration) *EastmoneyClient {
	if baseURL == "" {
		baseURL = defaultEastmoneyBaseURL
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)

	return &EastmoneyClient{client: client}
}

type klineResponse struct {
	Data struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// GetDailyBars retrieves daily bars for a six-digit A-share ticker between
// start (inclusive) and end (exclusive).
func (c *EastmoneyClient) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Candle, error) {
	var out klineResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"secid":   secID(ticker),
			"klt":     "101", // daily
			"fqt":     "1",   // forward adjusted
			"beg":     start.Format("20060102"),
			"end":     end.AddDate(0, 0, -1).Format("20060102"),
			"fields1": "f1,f2,f3",
			"fields2": "f51,f52,f53,f54,f55,f56",
		}).
		SetResult(&out).
		Get("/api/qt/stock/kline/get")
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", ticker, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch klines for %s: status %s", ticker, resp.Status())
	}
	if len(out.Data.Klines) == 0 {
		return nil, ErrEmptyKlineResponse
	}

	return parseKlines(ticker, out.Data.Klines)
}

// secID maps a ticker to the Eastmoney market-prefixed id: Shanghai listings
// (6xxxxx) use market 1, Shenzhen listings use market 0.
func secID(ticker string) string {
	if strings.HasPrefix(ticker, "6") {
		return "1." + ticker
	}
	return "0." + ticker
}

// parseKlines decodes the comma-separated kline rows
// ("date,open,close,high,low,volume") into candles. A malformed row fails
// the whole response; a half-parsed series is worse than none.
func parseKlines(ticker string, klines []string) ([]types.Candle, error) {
	candles := make([]types.Candle, 0, len(klines))
	for _, line := range klines {
		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			return nil, fmt.Errorf("malformed kline row %q", line)
		}

		date, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			return nil, fmt.Errorf("parse kline date %q: %w", fields[0], err)
		}

		values := make([]decimal.Decimal, 5)
		for i, raw := range fields[1:6] {
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("parse kline field %q: %w", raw, err)
			}
			values[i] = v
		}

		candles = append(candles, types.Candle{
			Ticker: ticker,
			Date:   date,
			Open:   values[0],
			Close:  values[1],
			High:   values[2],
			Low:    values[3],
			Volume: values[4],
		})
	}
	return candles, nil
}
