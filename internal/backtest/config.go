// Package backtest runs trading-strategy backtests over historical kline
// data and manages the dashboard backtest configuration.
package backtest

import (
	"errors"
	"strings"

	"astock/pkg/astock"
)

// Default backtest parameters, applied wherever the stored configuration
// leaves a field out.
const (
	DefaultStockCode    = "000001"
	DefaultBacktestYear = 3
	DefaultKlineBuy     = "(D5MA > D10MA) && (D10MA > D30MA)"
	DefaultBuyCondition = "DK < -2%"
	DefaultGainPct      = 5.0
	DefaultLossPct      = 10.0
	DefaultHoldPeriod   = 60
)

// FileConfig mirrors astock.Config with pointer fields so that a stored or
// submitted configuration can distinguish "absent" from zero values. Absent
// fields fall back to the defaults during Resolve.
type FileConfig struct {
	SaveOfflineData *bool              `json:"save_offline_data,omitempty"`
	TargetStockCode *string            `json:"target_stock_code,omitempty"`
	BacktestYear    *int               `json:"backtest_year,omitempty"`
	KlineStrategy   *FileKlineStrategy `json:"kline_strategy,omitempty"`
	TradeStrategy   *FileTradeStrategy `json:"trade_strategy,omitempty"`
}

// FileKlineStrategy holds the kline buy expression.
type FileKlineStrategy struct {
	Buy *string `json:"buy,omitempty"`
}

// FileTradeStrategy holds the buy condition and sell rules.
type FileTradeStrategy struct {
	Buys *string        `json:"BUYS,omitempty"`
	Sell *FileSellRules `json:"SELL,omitempty"`
}

// FileSellRules holds the sell thresholds.
type FileSellRules struct {
	Gain   *float64 `json:"GAIN,omitempty"`
	Loss   *float64 `json:"LOSS,omitempty"`
	Period *int     `json:"PERIOD,omitempty"`
}

// DefaultConfig returns the fully resolved default configuration.
func DefaultConfig() astock.Config {
	return (&FileConfig{}).Resolve()
}

// Resolve produces a complete configuration, substituting defaults for
// every absent field. Present fields are taken as-is, including zero
// values; validation is a separate concern.
func (f *FileConfig) Resolve() astock.Config {
	cfg := astock.Config{
		SaveOfflineData: true,
		TargetStockCode: DefaultStockCode,
		BacktestYear:    DefaultBacktestYear,
		KlineStrategy:   astock.KlineStrategy{Buy: DefaultKlineBuy},
		TradeStrategy: astock.TradeStrategy{
			Buys: DefaultBuyCondition,
			Sell: astock.SellRules{
				Gain:   DefaultGainPct,
				Loss:   DefaultLossPct,
				Period: DefaultHoldPeriod,
			},
		},
	}
	if f == nil {
		return cfg
	}

	if f.SaveOfflineData != nil {
		cfg.SaveOfflineData = *f.SaveOfflineData
	}
	if f.TargetStockCode != nil {
		cfg.TargetStockCode = *f.TargetStockCode
	}
	if f.BacktestYear != nil {
		cfg.BacktestYear = *f.BacktestYear
	}
	if f.KlineStrategy != nil && f.KlineStrategy.Buy != nil {
		cfg.KlineStrategy.Buy = *f.KlineStrategy.Buy
	}
	if f.TradeStrategy != nil {
		if f.TradeStrategy.Buys != nil {
			cfg.TradeStrategy.Buys = *f.TradeStrategy.Buys
		}
		if sell := f.TradeStrategy.Sell; sell != nil {
			if sell.Gain != nil {
				cfg.TradeStrategy.Sell.Gain = *sell.Gain
			}
			if sell.Loss != nil {
				cfg.TradeStrategy.Sell.Loss = *sell.Loss
			}
			if sell.Period != nil {
				cfg.TradeStrategy.Sell.Period = *sell.Period
			}
		}
	}
	return cfg
}

// Validate checks a resolved configuration. All violations are reported in
// one error, joined with "; ".
func Validate(cfg astock.Config) error {
	var problems []string

	if strings.TrimSpace(cfg.TargetStockCode) == "" {
		problems = append(problems, "股票代码不能为空")
	}
	if cfg.BacktestYear <= 0 {
		problems = append(problems, "回测年数必须是正整数")
	}
	if cfg.TradeStrategy.Sell.Gain <= 0 {
		problems = append(problems, "止盈比例必须是正数")
	}
	if cfg.TradeStrategy.Sell.Loss <= 0 {
		problems = append(problems, "止损比例必须是正数")
	}
	if cfg.TradeStrategy.Sell.Period <= 0 {
		problems = append(problems, "持有周期必须是正整数")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
