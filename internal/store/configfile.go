package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"astock/internal/backtest"
	"astock/pkg/astock"
)

// ConfigFile persists the dashboard backtest configuration as JSON. Loading
// always yields a complete configuration: absent fields fall back to the
// defaults, and a missing file is created with them.
type ConfigFile struct {
	path string
	log  *slog.Logger
}

// NewConfigFile creates a ConfigFile at the given path.
func NewConfigFile(path string, log *slog.Logger) *ConfigFile {
	return &ConfigFile{path: path, log: log}
}

// Load reads and resolves the stored configuration. An unreadable or
// corrupt file falls back to the defaults rather than failing the request.
func (c *ConfigFile) Load() astock.Config {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		cfg := backtest.DefaultConfig()
		if err := c.Save(cfg); err != nil {
			c.log.Warn("writing default config failed", "path", c.path, "error", err)
		}
		return cfg
	}
	if err != nil {
		c.log.Warn("reading config failed, using defaults", "path", c.path, "error", err)
		return backtest.DefaultConfig()
	}

	var fc backtest.FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		c.log.Warn("parsing config failed, using defaults", "path", c.path, "error", err)
		return backtest.DefaultConfig()
	}
	return fc.Resolve()
}

// Save writes the configuration to disk.
func (c *ConfigFile) Save(cfg astock.Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(c.path, data, 0o644)
}
