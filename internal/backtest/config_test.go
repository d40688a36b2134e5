package backtest

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	cfg := (&FileConfig{}).Resolve()

	if cfg.TargetStockCode != "000001" {
		t.Errorf("TargetStockCode = %q, want 000001", cfg.TargetStockCode)
	}
	if cfg.BacktestYear != 3 {
		t.Errorf("BacktestYear = %d, want 3", cfg.BacktestYear)
	}
	if !cfg.SaveOfflineData {
		t.Error("SaveOfflineData should default to true")
	}
	if cfg.KlineStrategy.Buy != "(D5MA > D10MA) && (D10MA > D30MA)" {
		t.Errorf("KlineStrategy.Buy = %q, want default expression", cfg.KlineStrategy.Buy)
	}
	if cfg.TradeStrategy.Buys != "DK < -2%" {
		t.Errorf("TradeStrategy.Buys = %q, want default condition", cfg.TradeStrategy.Buys)
	}
	sell := cfg.TradeStrategy.Sell
	if sell.Gain != 5 || sell.Loss != 10 || sell.Period != 60 {
		t.Errorf("Sell = %+v, want 5/10/60", sell)
	}
}

func TestResolveNilReceiver(t *testing.T) {
	var fc *FileConfig
	if cfg := fc.Resolve(); cfg.BacktestYear != 3 {
		t.Errorf("nil FileConfig should resolve to defaults, got %+v", cfg)
	}
}

func TestResolvePartial(t *testing.T) {
	// Only some fields present; the rest fall back to defaults, and present
	// zero-ish values are kept as-is.
	raw := []byte(`{
		"save_offline_data": false,
		"target_stock_code": "600000;000001",
		"trade_strategy": {"SELL": {"GAIN": 8}}
	}`)

	var fc FileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg := fc.Resolve()

	if cfg.SaveOfflineData {
		t.Error("explicit false must not be replaced by the default true")
	}
	if cfg.TargetStockCode != "600000;000001" {
		t.Errorf("TargetStockCode = %q, want stored value", cfg.TargetStockCode)
	}
	if cfg.BacktestYear != 3 {
		t.Errorf("absent BacktestYear = %d, want default 3", cfg.BacktestYear)
	}
	if cfg.TradeStrategy.Sell.Gain != 8 {
		t.Errorf("Sell.Gain = %v, want stored 8", cfg.TradeStrategy.Sell.Gain)
	}
	if cfg.TradeStrategy.Sell.Loss != 10 || cfg.TradeStrategy.Sell.Period != 60 {
		t.Errorf("absent sell fields = %+v, want defaults 10/60", cfg.TradeStrategy.Sell)
	}
	if cfg.TradeStrategy.Buys != "DK < -2%" {
		t.Errorf("absent Buys = %q, want default", cfg.TradeStrategy.Buys)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.TargetStockCode = "  "
	cfg.BacktestYear = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("invalid config should not validate")
	}
	msg := err.Error()
	if !strings.Contains(msg, "股票代码不能为空") {
		t.Errorf("error %q should mention the empty stock code", msg)
	}
	if !strings.Contains(msg, "回测年数必须是正整数") {
		t.Errorf("error %q should mention the invalid year", msg)
	}
	if !strings.Contains(msg, "; ") {
		t.Errorf("error %q should join problems with a semicolon", msg)
	}

	cfg = DefaultConfig()
	cfg.TradeStrategy.Sell.Gain = 0
	cfg.TradeStrategy.Sell.Loss = -1
	cfg.TradeStrategy.Sell.Period = 0
	err = Validate(cfg)
	if err == nil {
		t.Fatal("invalid sell rules should not validate")
	}
	for _, want := range []string{"止盈比例必须是正数", "止损比例必须是正数", "持有周期必须是正整数"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err, want)
		}
	}
}
