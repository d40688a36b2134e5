package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the astock server and tools.
type Config struct {
	Server   Server   `yaml:"server"`
	Storage  Storage  `yaml:"storage"`
	Quote    Quote    `yaml:"quote"`
	Backtest Backtest `yaml:"backtest"`
	Logging  Logging  `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage holds paths for data persistence.
type Storage struct {
	// DataDir is the root of the offline kline cache. Bars are written as
	// <data_dir>/<stock_code>/<period>.parquet.
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	// ConfigPath is where the dashboard backtest configuration is persisted
	// between runs.
	ConfigPath string `yaml:"config_path"`
}

// Quote configures the upstream A-share quote API.
type Quote struct {
	BaseURL         string `yaml:"base_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	MaxRetries      int    `yaml:"max_retries"`
}

// Backtest holds execution parameters for backtest runs.
type Backtest struct {
	MaxWorkers int `yaml:"max_workers"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Addr returns the host:port string the HTTP server should listen on.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyDefaults fills in fields that are safe to leave out of the YAML file.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "astock.db"
	}
	if cfg.Storage.ConfigPath == "" {
		cfg.Storage.ConfigPath = "config.json"
	}
	if cfg.Quote.BaseURL == "" {
		cfg.Quote.BaseURL = "https://push2his.eastmoney.com"
	}
	if cfg.Quote.RateLimitPerMin == 0 {
		cfg.Quote.RateLimitPerMin = 60
	}
	if cfg.Quote.MaxRetries == 0 {
		cfg.Quote.MaxRetries = 3
	}
	if cfg.Backtest.MaxWorkers == 0 {
		cfg.Backtest.MaxWorkers = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		cfg.Quote.BaseURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
