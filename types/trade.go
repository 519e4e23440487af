package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade is the record of one executed fill. Created by the executor only;
// never mutated after it enters the ledger.
type Trade struct {
	Date         time.Time       `json:"date"`
	Side         Side            `json:"side"`
	RequestedQty int64           `json:"requestedQty"`
	ExecutedQty  int64           `json:"executedQty"`
	FillPrice    decimal.Decimal `json:"fillPrice"`
	Commission   decimal.Decimal `json:"commission"`
}

func NewTrade(
	date time.Time,
	side Side,
	requestedQty int64,
	executedQty int64,
	fillPrice decimal.Decimal,
	commission decimal.Decimal,
) Trade {
	return Trade{
		Date:         date,
		Side:         side,
		RequestedQty: requestedQty,
		ExecutedQty:  executedQty,
		FillPrice:    fillPrice,
		Commission:   commission,
	}
}
