package astock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8080/")

	if c == nil {
		t.Fatal("expected non-nil client")
	}
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash stripped", c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestGetConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/config" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(ConfigResponse{
			Success: true,
			Config: &Config{
				TargetStockCode: "000001;600000",
				BacktestYear:    3,
				SaveOfflineData: true,
			},
		})
	}))
	defer srv.Close()

	cfg, err := NewClient(srv.URL).GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig() error: %v", err)
	}
	if cfg.BacktestYear != 3 {
		t.Errorf("BacktestYear = %d, want 3", cfg.BacktestYear)
	}
	codes := cfg.StockCodes()
	if len(codes) != 2 || codes[0] != "000001" || codes[1] != "600000" {
		t.Errorf("StockCodes() = %v, want [000001 600000]", codes)
	}
}

func TestSaveConfigServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		json.NewEncoder(w).Encode(SaveResponse{Success: false, Error: "股票代码不能为空"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SaveConfig(context.Background(), &Config{})
	if err == nil {
		t.Fatal("SaveConfig() should surface the server error")
	}
	if !strings.Contains(err.Error(), "股票代码不能为空") {
		t.Errorf("error = %q, want server-supplied message", err)
	}
}

func TestRunBacktest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/backtest" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(ResultsResponse{
			Success: true,
			Results: []ResultGroup{
				{StockCode: "000001", Trades: []Trade{{BuyDate: "2024-01-10", Profit: 120}}},
			},
			CombinedStatistics: &Stats{TotalTrades: 1, WinRate: 100},
		})
	}))
	defer srv.Close()

	groups, stats, err := NewClient(srv.URL).RunBacktest(context.Background())
	if err != nil {
		t.Fatalf("RunBacktest() error: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Trades) != 1 {
		t.Fatalf("got %d groups, want 1 with 1 trade", len(groups))
	}
	if stats == nil || stats.TotalTrades != 1 {
		t.Errorf("stats = %+v, want TotalTrades=1", stats)
	}
}

func TestGetTradesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL).GetTrades(context.Background())
	if err == nil {
		t.Fatal("GetTrades() should fail on a non-JSON response")
	}
}
