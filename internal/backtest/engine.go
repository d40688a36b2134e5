package backtest

import (
	"math"
	"time"

	"astock/internal/market"
	"astock/internal/strategy"
	"astock/pkg/astock"
)

// InitialCapital is the starting capital for every backtest run.
const InitialCapital = 1_000_000

// Engine replays one stock's history against a trading strategy. It holds at
// most one position at a time, buys with the full available capital in
// 100-share lots, and never reads bars past the simulated date.
type Engine struct {
	cfg   astock.Config
	strat *strategy.TradingStrategy
	now   func() time.Time

	capital  float64
	position *position
	trades   []astock.Trade
}

type position struct {
	buyDate  time.Time
	buyPrice float64
	shares   int64
	cost     float64
}

// NewEngine creates an Engine for the given resolved configuration.
func NewEngine(cfg astock.Config) *Engine {
	return &Engine{
		cfg:   cfg,
		strat: strategy.New(cfg),
		now:   time.Now,
	}
}

// Run backtests one stock and returns its trades and statistics. The
// backtest window is backtest_year years back from today, clamped to the
// stock's listing date. A position still open at the end of the window is
// liquidated at the last close.
func (e *Engine) Run(k *market.Kline) astock.ResultGroup {
	e.capital = InitialCapital
	e.position = nil
	e.trades = nil

	if len(k.Daily) == 0 {
		return emptyResult(k.StockCode, k.StockName)
	}

	start := e.now().AddDate(0, 0, -e.cfg.BacktestYear*365)
	if first := k.Daily[0].Date; start.Before(first) {
		start = first
	}

	var lastBar *market.Bar
	for i := range k.Daily {
		bar := &k.Daily[i]
		if bar.Date.Before(start) {
			continue
		}
		lastBar = bar

		if e.position == nil {
			if e.strat.CheckBuySignal(k, bar.Date, false) {
				e.executeBuy(bar.Date, bar.Close)
			}
			continue
		}

		if sell, reason := e.strat.CheckSellSignal(k, bar.Date, e.position.buyPrice, e.position.buyDate); sell {
			e.executeSell(k, bar.Date, bar.Close, reason)
		}
	}

	if lastBar == nil {
		return emptyResult(k.StockCode, k.StockName)
	}
	if e.position != nil {
		e.executeSell(k, lastBar.Date, lastBar.Close, astock.ReasonFinal)
	}

	return astock.ResultGroup{
		StockCode:  k.StockCode,
		StockName:  k.StockName,
		Trades:     append([]astock.Trade{}, e.trades...),
		Statistics: computeStats(e.trades, e.capital),
	}
}

func (e *Engine) executeBuy(date time.Time, price float64) {
	if price <= 0 {
		return
	}
	shares := int64(e.capital/price/100) * 100
	if shares <= 0 {
		return
	}

	cost := float64(shares) * price
	e.capital -= cost
	e.position = &position{
		buyDate:  date,
		buyPrice: price,
		shares:   shares,
		cost:     cost,
	}
}

func (e *Engine) executeSell(k *market.Kline, date time.Time, price float64, reason string) {
	pos := e.position
	if pos == nil {
		return
	}

	revenue := float64(pos.shares) * price
	profit := revenue - pos.cost
	profitPct := (price - pos.buyPrice) / pos.buyPrice * 100

	e.trades = append(e.trades, astock.Trade{
		TradeID:    len(e.trades) + 1,
		StockCode:  k.StockCode,
		StockName:  k.StockName,
		BuyDate:    pos.buyDate.Format("2006-01-02"),
		BuyPrice:   round2(pos.buyPrice),
		SellDate:   date.Format("2006-01-02"),
		SellPrice:  round2(price),
		Shares:     int(pos.shares),
		Profit:     round2(profit),
		ProfitPct:  round2(profitPct),
		SellReason: reason,
		HoldDays:   int(date.Sub(pos.buyDate).Hours() / 24),
	})

	e.capital += revenue
	e.position = nil
}

func emptyResult(stockCode, stockName string) astock.ResultGroup {
	if stockName == "" {
		stockName = stockCode
	}
	return astock.ResultGroup{
		StockCode:  stockCode,
		StockName:  stockName,
		Trades:     []astock.Trade{},
		Statistics: astock.Stats{},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
