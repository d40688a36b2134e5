// Package market provides China A-share kline data: fetching from the quote
// API, moving-average and price lookups, and offline cache orchestration.
package market

import "time"

// Period identifies a kline aggregation period.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Periods lists all supported kline periods.
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly}

// Bar is one kline bar (forward-adjusted prices).
type Bar struct {
	Date   time.Time
	Open   float64
	Close  float64
	High   float64
	Low    float64
	Volume int64
	Amount float64
	PctChg float64
}

// Series is a kline series sorted ascending by date.
type Series []Bar

// Kline bundles all periods for one stock.
type Kline struct {
	StockCode string
	StockName string
	Daily     Series
	Weekly    Series
	Monthly   Series
}

// ByPeriod returns the series for the given period.
func (k *Kline) ByPeriod(p Period) Series {
	switch p {
	case PeriodWeekly:
		return k.Weekly
	case PeriodMonthly:
		return k.Monthly
	default:
		return k.Daily
	}
}
