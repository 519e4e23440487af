package engine

import (
	"testing"
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"

	"github.com/shopspring/decimal"
)

func TestValueTrackerRecord(t *testing.T) {
	p := types.NewPortfolio(decimal.NewFromInt(10000))
	p.Quantity = 100
	tracker := newValueTracker(p)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	first := tracker.record(day, decimal.NewFromInt(10))
	// 10000 cash + 100 * 10
	if !first.Value.Equal(decimal.NewFromInt(11000)) {
		t.Errorf("first value = %v, want 11000", first.Value)
	}
	if !first.Return.Equal(decimal.Zero) {
		t.Errorf("first return = %v, want 0", first.Return)
	}

	second := tracker.record(day.AddDate(0, 0, 1), decimal.NewFromInt(11))
	if !second.Value.Equal(decimal.NewFromInt(11100)) {
		t.Errorf("second value = %v, want 11100", second.Value)
	}
	// 11100/11000 - 1
	wantRet := decimal.NewFromInt(11100).Div(decimal.NewFromInt(11000)).Sub(decimal.NewFromInt(1))
	if !second.Return.Equal(wantRet) {
		t.Errorf("second return = %v, want %v", second.Return, wantRet)
	}

	if len(tracker.series()) != 2 {
		t.Fatalf("series length = %d, want 2", len(tracker.series()))
	}
	if !p.LastValue.Equal(second.Value) {
		t.Errorf("portfolio last value = %v, want %v", p.LastValue, second.Value)
	}
}

func TestValueTrackerFlatPriceHasZeroReturn(t *testing.T) {
	p := types.NewPortfolio(decimal.NewFromInt(10000))
	tracker := newValueTracker(p)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	tracker.record(day, decimal.NewFromInt(10))
	point := tracker.record(day.AddDate(0, 0, 1), decimal.NewFromInt(10))

	if !point.Return.Equal(decimal.Zero) {
		t.Errorf("return = %v, want 0", point.Return)
	}
}
