package strategy

import (
	"time"

	"astock/internal/market"
	"astock/pkg/astock"
)

// TradingStrategy combines the kline buy expression, the percent-change buy
// condition, and the sell thresholds from one dashboard configuration.
type TradingStrategy struct {
	klineBuy   string
	buyCond    string
	gainPct    float64
	lossPct    float64
	holdPeriod int
}

// New builds a TradingStrategy from a resolved configuration.
func New(cfg astock.Config) *TradingStrategy {
	return &TradingStrategy{
		klineBuy:   cfg.KlineStrategy.Buy,
		buyCond:    cfg.TradeStrategy.Buys,
		gainPct:    cfg.TradeStrategy.Sell.Gain,
		lossPct:    cfg.TradeStrategy.Sell.Loss,
		holdPeriod: cfg.TradeStrategy.Sell.Period,
	}
}

// CheckBuySignal reports whether a buy should happen on date. Holding a
// position always vetoes a buy; otherwise both the kline expression and the
// buy condition must hold. An invalid kline expression evaluates to false.
func (s *TradingStrategy) CheckBuySignal(k *market.Kline, date time.Time, hasPosition bool) bool {
	if hasPosition {
		return false
	}

	ok, err := EvaluateKlineExpr(s.klineBuy, k, date)
	if err != nil || !ok {
		return false
	}

	return EvaluateBuyCondition(s.buyCond, k, date)
}

// CheckSellSignal reports whether a position bought at buyPrice on buyDate
// should be closed on date, and with which reason. The checks run in
// priority order: gain stop, loss stop, then holding-period expiry.
func (s *TradingStrategy) CheckSellSignal(k *market.Kline, date time.Time, buyPrice float64, buyDate time.Time) (bool, string) {
	price, ok := k.Daily.ClosePrice(date, 0)
	if !ok || buyPrice == 0 {
		return false, ""
	}

	profitPct := (price - buyPrice) / buyPrice * 100

	if profitPct >= s.gainPct {
		return true, astock.ReasonGainStop
	}
	if profitPct <= -s.lossPct {
		return true, astock.ReasonLossStop
	}
	if holdDays(buyDate, date) >= s.holdPeriod {
		return true, astock.ReasonExpired
	}
	return false, ""
}

// CurrentPrice returns the daily close as of date.
func (s *TradingStrategy) CurrentPrice(k *market.Kline, date time.Time) (float64, bool) {
	return k.Daily.ClosePrice(date, 0)
}

// holdDays counts calendar days between buy and sell.
func holdDays(buyDate, date time.Time) int {
	return int(date.Sub(buyDate).Hours() / 24)
}
