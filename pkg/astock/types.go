// Package astock defines the wire contract of the astock-server REST API
// and provides a Go client for it. All field names follow the JSON schema
// served by the backend (snake_case, with the legacy upper-case keys kept
// for the trade-strategy block).
package astock

import "strings"

// Config holds the parameters for one backtest run. It is fetched from and
// submitted to the server as a full replacement, never patched.
type Config struct {
	TargetStockCode string        `json:"target_stock_code"`
	BacktestYear    int           `json:"backtest_year"`
	SaveOfflineData bool          `json:"save_offline_data"`
	KlineStrategy   KlineStrategy `json:"kline_strategy"`
	TradeStrategy   TradeStrategy `json:"trade_strategy"`
}

// KlineStrategy holds the kline buy-rule expression. The expression syntax
// is owned by the server's strategy evaluator; clients treat it as opaque.
type KlineStrategy struct {
	Buy string `json:"buy"`
}

// TradeStrategy holds the buy condition and sell rules.
type TradeStrategy struct {
	Buys string    `json:"BUYS"`
	Sell SellRules `json:"SELL"`
}

// SellRules defines when an open position is closed: gain-stop and
// loss-stop thresholds in percent, and the maximum holding period in days.
type SellRules struct {
	Gain   float64 `json:"GAIN"`
	Loss   float64 `json:"LOSS"`
	Period int     `json:"PERIOD"`
}

// StockCodes splits the semicolon-separated target_stock_code field into
// individual codes, dropping empty entries.
func (c *Config) StockCodes() []string {
	var codes []string
	for _, code := range strings.Split(c.TargetStockCode, ";") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Sell reasons as they appear on the wire.
const (
	ReasonGainStop = "止盈"
	ReasonLossStop = "止损"
	ReasonExpired  = "到期"
	ReasonFinal    = "回测结束"
)

// Trade is one closed round-trip produced by the backtest engine. Trades
// are immutable once received; clients aggregate, order, and format them
// but never modify fields.
type Trade struct {
	TradeID    int     `json:"trade_id"`
	StockCode  string  `json:"stock_code"`
	StockName  string  `json:"stock_name"`
	BuyDate    string  `json:"buy_date"` // YYYY-MM-DD
	BuyPrice   float64 `json:"buy_price"`
	SellDate   string  `json:"sell_date"` // YYYY-MM-DD
	SellPrice  float64 `json:"sell_price"`
	Shares     int     `json:"shares"`
	Profit     float64 `json:"profit"`
	ProfitPct  float64 `json:"profit_pct"`
	SellReason string  `json:"sell_reason"`
	HoldDays   int     `json:"hold_days"`
}

// Stats holds performance metrics for one result group or, as combined
// statistics, across all groups of a response.
type Stats struct {
	TotalTrades    int     `json:"total_trades"`
	WinCount       int     `json:"win_count"`
	LossCount      int     `json:"loss_count"`
	WinRate        float64 `json:"win_rate"`          // percent
	TotalReturn    float64 `json:"total_return"`      // CNY
	TotalReturnPct float64 `json:"total_return_pct"`  // percent
	FinalCapital   float64 `json:"final_capital,omitempty"`
	AvgHoldDays    float64 `json:"avg_hold_days"`
}

// ResultGroup is one stock's backtest output within a multi-stock response.
type ResultGroup struct {
	StockCode  string  `json:"stock_code"`
	StockName  string  `json:"stock_name"`
	Trades     []Trade `json:"trades"`
	Statistics Stats   `json:"statistics"`
}

// ConfigResponse is the envelope for GET /api/config.
type ConfigResponse struct {
	Success bool    `json:"success"`
	Config  *Config `json:"config,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// SaveResponse is the envelope for POST /api/config.
type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResultsResponse is the envelope for POST /api/backtest and GET /api/trades.
type ResultsResponse struct {
	Success            bool          `json:"success"`
	Results            []ResultGroup `json:"results,omitempty"`
	CombinedStatistics *Stats        `json:"combined_statistics,omitempty"`
	Error              string        `json:"error,omitempty"`
}
