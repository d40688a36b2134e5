// Package store persists astock data: the offline kline cache as Parquet
// files, backtest results in SQLite, and the dashboard configuration as a
// JSON file.
package store

import (
	"context"

	"astock/pkg/astock"
)

// ResultStore persists backtest runs and serves the most recent one.
type ResultStore interface {
	// SaveRun stores a completed backtest run.
	SaveRun(ctx context.Context, groups []astock.ResultGroup, combined *astock.Stats) error

	// LatestRun returns the most recent run, or nil groups when no run has
	// been stored yet.
	LatestRun(ctx context.Context) ([]astock.ResultGroup, *astock.Stats, error)
}
