package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astock/internal/backtest"
	"astock/internal/config"
	"astock/internal/httpapi"
	"astock/internal/market"
	"astock/internal/store"
	"astock/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/astock.yaml"
	if p := os.Getenv("ASTOCK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	// Storage.
	cache := store.NewParquetCache(cfg.Storage.DataDir)
	results, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening result store: %v", err)
	}
	defer results.Close()
	configs := store.NewConfigFile(cfg.Storage.ConfigPath, logger)

	// Quote data and backtesting.
	client := market.NewClient(cfg.Quote.BaseURL, cfg.Quote.RateLimitPerMin, cfg.Quote.MaxRetries, logger)
	svc := market.NewService(client, cache, logger)
	runner := backtest.NewRunner(svc, cfg.Backtest.MaxWorkers, logger)

	srv := httpapi.NewServer(configs, runner, results, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("astock server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down astock server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
