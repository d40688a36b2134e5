package main

import (
	"errors"
	"io"
	"testing"

	"astock/internal/util"
	"astock/pkg/astock"
)

func testModel() model {
	return initialModel(astock.NewClient("http://localhost:0"), util.NewLoggerTo(io.Discard, "error"))
}

func TestCoerceDefaults(t *testing.T) {
	if got := coerceInt("", 3); got != 3 {
		t.Errorf("coerceInt(empty) = %d, want 3", got)
	}
	if got := coerceInt("abc", 60); got != 60 {
		t.Errorf("coerceInt(non-numeric) = %d, want 60", got)
	}
	if got := coerceInt(" 5 ", 3); got != 5 {
		t.Errorf("coerceInt(valid) = %d, want 5", got)
	}
	if got := coerceFloat("", 5); got != 5 {
		t.Errorf("coerceFloat(empty) = %v, want 5", got)
	}
	if got := coerceFloat("x", 10); got != 10 {
		t.Errorf("coerceFloat(non-numeric) = %v, want 10", got)
	}
	if got := coerceFloat("7.5", 5); got != 7.5 {
		t.Errorf("coerceFloat(valid) = %v, want 7.5", got)
	}
}

func TestFormConfigCoercesBadNumbers(t *testing.T) {
	m := testModel()
	m.inputs[fieldStockCode].SetValue(" 600000 ")
	m.inputs[fieldYears].SetValue("not a number")
	m.inputs[fieldGain].SetValue("")
	m.inputs[fieldLoss].SetValue("oops")
	m.inputs[fieldPeriod].SetValue("")

	cfg := m.formConfig()
	if cfg.TargetStockCode != "600000" {
		t.Errorf("stock code = %q, want trimmed value", cfg.TargetStockCode)
	}
	if cfg.BacktestYear != 3 {
		t.Errorf("backtest year = %d, want default 3", cfg.BacktestYear)
	}
	if cfg.TradeStrategy.Sell.Gain != 5 {
		t.Errorf("gain = %v, want default 5", cfg.TradeStrategy.Sell.Gain)
	}
	if cfg.TradeStrategy.Sell.Loss != 10 {
		t.Errorf("loss = %v, want default 10", cfg.TradeStrategy.Sell.Loss)
	}
	if cfg.TradeStrategy.Sell.Period != 60 {
		t.Errorf("period = %d, want default 60", cfg.TradeStrategy.Sell.Period)
	}
}

func TestStartBacktestGuardsWhileRunning(t *testing.T) {
	m := testModel()

	if cmd := m.startBacktest(); cmd == nil {
		t.Fatal("first start returned no command")
	}
	if !m.running {
		t.Fatal("running flag not set by start")
	}
	if cmd := m.startBacktest(); cmd != nil {
		t.Error("second start while running returned a command, want nil")
	}
}

func TestSaveFailureAbortsBacktest(t *testing.T) {
	m := testModel()
	m.startBacktest()

	next, cmd := m.Update(configSavedMsg{err: errors.New("保存配置失败")})
	m = next.(model)
	if cmd != nil {
		t.Error("save failure chained a command, want abort")
	}
	if m.running {
		t.Error("running flag still set after aborted save")
	}
	if !m.statErr {
		t.Error("error status not shown")
	}
}

func TestSaveSuccessChainsBacktest(t *testing.T) {
	m := testModel()
	m.startBacktest()

	next, cmd := m.Update(configSavedMsg{})
	m = next.(model)
	if cmd == nil {
		t.Fatal("save success did not chain the backtest command")
	}
	if !m.running {
		t.Error("running flag dropped before the run finished")
	}
}

// The single done handler clears the guard on success and failure alike.
func TestBacktestDoneClearsGuard(t *testing.T) {
	m := testModel()
	m.startBacktest()
	next, _ := m.Update(backtestDoneMsg{err: errors.New("回测失败")})
	m = next.(model)
	if m.running {
		t.Error("running flag still set after failed run")
	}

	m = testModel()
	m.startBacktest()
	next, _ = m.Update(backtestDoneMsg{stats: &astock.Stats{TotalTrades: 1}})
	m = next.(model)
	if m.running {
		t.Error("running flag still set after successful run")
	}
	if !m.haveResults {
		t.Error("results not marked available after successful run")
	}
}
