package backtest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"astock/internal/market"
	"astock/pkg/astock"
)

// KlineProvider supplies kline data for one stock.
type KlineProvider interface {
	GetKline(ctx context.Context, stockCode string, saveOffline bool) (*market.Kline, error)
}

// Runner backtests every stock named by a configuration, fanning out across
// workers. Stocks whose data cannot be fetched are skipped with a warning
// rather than failing the whole run.
type Runner struct {
	provider KlineProvider
	workers  int
	log      *slog.Logger
}

// NewRunner creates a Runner with the given fan-out width.
func NewRunner(provider KlineProvider, workers int, log *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{provider: provider, workers: workers, log: log}
}

// Run backtests all configured stocks and returns their result groups in
// configuration order plus the combined statistics.
func (r *Runner) Run(ctx context.Context, cfg astock.Config) ([]astock.ResultGroup, astock.Stats, error) {
	codes := cfg.StockCodes()
	if len(codes) == 0 {
		return nil, astock.Stats{}, fmt.Errorf("no stock codes configured")
	}

	results := make([]*astock.ResultGroup, len(codes))
	sem := make(chan struct{}, r.workers)

	g, gctx := errgroup.WithContext(ctx)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			r.log.Info("backtesting stock", "stock_code", code)

			k, err := r.provider.GetKline(gctx, code, cfg.SaveOfflineData)
			if err != nil {
				r.log.Warn("skipping stock, no data", "stock_code", code, "error", err)
				return nil
			}

			group := NewEngine(cfg).Run(k)
			results[i] = &group

			r.log.Info("backtest finished", "stock_code", code, "trades", group.Statistics.TotalTrades)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, astock.Stats{}, err
	}

	groups := make([]astock.ResultGroup, 0, len(results))
	for _, res := range results {
		if res != nil {
			groups = append(groups, *res)
		}
	}
	return groups, CombinedStats(groups), nil
}
