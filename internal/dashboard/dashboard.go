// Package dashboard turns backtest responses into display-ready view
// models: it merges trades across result groups, orders them, and formats
// statistics and trade rows with profit/loss classification. It is pure
// data transformation; applying the view model to a concrete UI is the
// caller's job.
package dashboard

import (
	"sort"
	"strconv"

	"astock/pkg/astock"
)

// Style classes shared by summary cards and trade cells.
const (
	ClassProfit = "profit"
	ClassLoss   = "loss"
)

// Summary is the display-ready form of the combined statistics.
type Summary struct {
	TotalTrades string
	WinRate     string
	TotalReturn string // currency-prefixed, 万 above the threshold
	ReturnClass string
	ReturnPct   string // explicit sign
	PctClass    string
	AvgHoldDays string
}

// Row is one display-ready trade table row.
type Row struct {
	BuyDate     string
	StockCode   string
	StockName   string
	BuyPrice    string
	SellDate    string
	SellPrice   string
	Profit      string
	ProfitPct   string
	ProfitClass string // applies to both the profit and percent cells
	Reason      string // server-supplied label, shown verbatim
	ReasonClass string
	HoldDays    string
}

// View is everything a render pass needs.
type View struct {
	Summary Summary
	Rows    []Row
}

// MergeTrades flattens the trades of every result group into one sequence
// sorted descending by buy date. The sort is stable, so repeated renders of
// the same response are identical and same-day trades keep their group
// order.
func MergeTrades(groups []astock.ResultGroup) []astock.Trade {
	var all []astock.Trade
	for _, g := range groups {
		all = append(all, g.Trades...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].BuyDate > all[j].BuyDate
	})
	return all
}

// BuildSummary formats the combined statistics. A nil stats record renders
// as all zeros.
func BuildSummary(stats *astock.Stats) Summary {
	if stats == nil {
		stats = &astock.Stats{}
	}
	return Summary{
		TotalTrades: strconv.Itoa(stats.TotalTrades),
		WinRate:     FormatPct(stats.WinRate),
		TotalReturn: FormatCurrency(stats.TotalReturn),
		ReturnClass: classify(stats.TotalReturn),
		ReturnPct:   FormatSignedPct(stats.TotalReturnPct),
		PctClass:    classify(stats.TotalReturnPct),
		AvgHoldDays: FormatDays(stats.AvgHoldDays),
	}
}

// BuildRows formats merged trades in their given order.
func BuildRows(trades []astock.Trade) []Row {
	rows := make([]Row, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, Row{
			BuyDate:     t.BuyDate,
			StockCode:   t.StockCode,
			StockName:   t.StockName,
			BuyPrice:    FormatPrice(t.BuyPrice),
			SellDate:    t.SellDate,
			SellPrice:   FormatPrice(t.SellPrice),
			Profit:      FormatCurrency(t.Profit),
			ProfitPct:   FormatSignedPctFixed(t.ProfitPct),
			ProfitClass: classify(t.Profit),
			Reason:      t.SellReason,
			ReasonClass: ParseSellReason(t.SellReason).Class(),
			HoldDays:    strconv.Itoa(t.HoldDays) + "天",
		})
	}
	return rows
}

// BuildView runs the full aggregation and formatting pipeline. It is a pure
// function of its inputs.
func BuildView(groups []astock.ResultGroup, stats *astock.Stats) View {
	return View{
		Summary: BuildSummary(stats),
		Rows:    BuildRows(MergeTrades(groups)),
	}
}

func classify(v float64) string {
	if v >= 0 {
		return ClassProfit
	}
	return ClassLoss
}
