package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	yamlContent := []byte(`
server:
  host: "0.0.0.0"
  port: 5000
storage:
  data_dir: "/tmp/astock/data"
  sqlite_path: "/tmp/astock/astock.db"
  config_path: "/tmp/astock/config.json"
quote:
  base_url: "https://quote.example.com"
  rate_limit_per_min: 30
  max_retries: 5
backtest:
  max_workers: 8
logging:
  level: "debug"
  format: "json"
`)

	tmpFile, err := os.CreateTemp("", "astock-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("QUOTE_BASE_URL")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:5000" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "0.0.0.0:5000")
	}
	if cfg.Storage.DataDir != "/tmp/astock/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/astock/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/astock/astock.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/astock/astock.db")
	}
	if cfg.Quote.BaseURL != "https://quote.example.com" {
		t.Errorf("Quote.BaseURL = %q, want %q", cfg.Quote.BaseURL, "https://quote.example.com")
	}
	if cfg.Quote.RateLimitPerMin != 30 {
		t.Errorf("Quote.RateLimitPerMin = %d, want %d", cfg.Quote.RateLimitPerMin, 30)
	}
	if cfg.Backtest.MaxWorkers != 8 {
		t.Errorf("Backtest.MaxWorkers = %d, want %d", cfg.Backtest.MaxWorkers, 8)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadDefaults(t *testing.T) {
	yamlContent := []byte(`
quote:
  base_url: "https://quote.example.com"
`)

	tmpFile, err := os.CreateTemp("", "astock-config-defaults-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, 5000)
	}
	if cfg.Storage.DataDir != "data" {
		t.Errorf("Storage.DataDir = %q, want default %q", cfg.Storage.DataDir, "data")
	}
	if cfg.Quote.RateLimitPerMin != 60 {
		t.Errorf("Quote.RateLimitPerMin = %d, want default %d", cfg.Quote.RateLimitPerMin, 60)
	}
	if cfg.Quote.MaxRetries != 3 {
		t.Errorf("Quote.MaxRetries = %d, want default %d", cfg.Quote.MaxRetries, 3)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
storage:
  data_dir: "/original/data"
quote:
  base_url: "https://yaml.example.com"
`)

	tmpFile, err := os.CreateTemp("", "astock-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Setenv("DATA_DIR", "/env/data")
	os.Setenv("QUOTE_BASE_URL", "https://env.example.com")
	defer os.Unsetenv("DATA_DIR")
	defer os.Unsetenv("QUOTE_BASE_URL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Quote.BaseURL != "https://env.example.com" {
		t.Errorf("Quote.BaseURL = %q, want %q (env override)", cfg.Quote.BaseURL, "https://env.example.com")
	}
	if cfg.Storage.SQLitePath != "astock.db" {
		t.Errorf("Storage.SQLitePath = %q, want default (from YAML absent)", cfg.Storage.SQLitePath)
	}
}
