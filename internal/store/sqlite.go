package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"astock/pkg/astock"
)

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore persists backtest runs in a SQLite database. Every run is kept
// so older results remain queryable, but the API only serves the latest one.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at       TEXT NOT NULL,
	total_trades     INTEGER NOT NULL,
	win_count        INTEGER NOT NULL,
	loss_count       INTEGER NOT NULL,
	win_rate         REAL NOT NULL,
	total_return     REAL NOT NULL,
	total_return_pct REAL NOT NULL,
	final_capital    REAL NOT NULL,
	avg_hold_days    REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS result_groups (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id           INTEGER NOT NULL REFERENCES backtest_runs(id) ON DELETE CASCADE,
	stock_code       TEXT NOT NULL,
	stock_name       TEXT NOT NULL,
	total_trades     INTEGER NOT NULL,
	win_count        INTEGER NOT NULL,
	loss_count       INTEGER NOT NULL,
	win_rate         REAL NOT NULL,
	total_return     REAL NOT NULL,
	total_return_pct REAL NOT NULL,
	final_capital    REAL NOT NULL,
	avg_hold_days    REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id    INTEGER NOT NULL REFERENCES result_groups(id) ON DELETE CASCADE,
	trade_id    INTEGER NOT NULL,
	stock_code  TEXT NOT NULL,
	stock_name  TEXT NOT NULL,
	buy_date    TEXT NOT NULL,
	buy_price   REAL NOT NULL,
	sell_date   TEXT NOT NULL,
	sell_price  REAL NOT NULL,
	shares      INTEGER NOT NULL,
	profit      REAL NOT NULL,
	profit_pct  REAL NOT NULL,
	sell_reason TEXT NOT NULL,
	hold_days   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_groups_run ON result_groups(run_id);
CREATE INDEX IF NOT EXISTS idx_trades_group ON trades(group_id);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores one complete backtest run in a single transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, groups []astock.ResultGroup, combined *astock.Stats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if combined == nil {
		combined = &astock.Stats{}
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
			(created_at, total_trades, win_count, loss_count, win_rate,
			 total_return, total_return_pct, final_capital, avg_hold_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Format(time.RFC3339),
		combined.TotalTrades, combined.WinCount, combined.LossCount, combined.WinRate,
		combined.TotalReturn, combined.TotalReturnPct, combined.FinalCapital, combined.AvgHoldDays,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, g := range groups {
		st := g.Statistics
		res, err := tx.ExecContext(ctx, `
			INSERT INTO result_groups
				(run_id, stock_code, stock_name, total_trades, win_count, loss_count,
				 win_rate, total_return, total_return_pct, final_capital, avg_hold_days)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, g.StockCode, g.StockName,
			st.TotalTrades, st.WinCount, st.LossCount, st.WinRate,
			st.TotalReturn, st.TotalReturnPct, st.FinalCapital, st.AvgHoldDays,
		)
		if err != nil {
			return fmt.Errorf("inserting group %s: %w", g.StockCode, err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for _, t := range g.Trades {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO trades
					(group_id, trade_id, stock_code, stock_name, buy_date, buy_price,
					 sell_date, sell_price, shares, profit, profit_pct, sell_reason, hold_days)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				groupID, t.TradeID, t.StockCode, t.StockName, t.BuyDate, t.BuyPrice,
				t.SellDate, t.SellPrice, t.Shares, t.Profit, t.ProfitPct, t.SellReason, t.HoldDays,
			); err != nil {
				return fmt.Errorf("inserting trade %d for %s: %w", t.TradeID, g.StockCode, err)
			}
		}
	}

	return tx.Commit()
}

// LatestRun returns the most recently stored run. When no run exists it
// returns nil groups and nil stats without an error.
func (s *SQLiteStore) LatestRun(ctx context.Context) ([]astock.ResultGroup, *astock.Stats, error) {
	combined := &astock.Stats{}
	var runID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, total_trades, win_count, loss_count, win_rate,
		       total_return, total_return_pct, final_capital, avg_hold_days
		FROM backtest_runs ORDER BY id DESC LIMIT 1`,
	).Scan(&runID, &combined.TotalTrades, &combined.WinCount, &combined.LossCount,
		&combined.WinRate, &combined.TotalReturn, &combined.TotalReturnPct,
		&combined.FinalCapital, &combined.AvgHoldDays)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stock_code, stock_name, total_trades, win_count, loss_count,
		       win_rate, total_return, total_return_pct, final_capital, avg_hold_days
		FROM result_groups WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var groups []astock.ResultGroup
	var groupIDs []int64
	for rows.Next() {
		var id int64
		var g astock.ResultGroup
		if err := rows.Scan(&id, &g.StockCode, &g.StockName,
			&g.Statistics.TotalTrades, &g.Statistics.WinCount, &g.Statistics.LossCount,
			&g.Statistics.WinRate, &g.Statistics.TotalReturn, &g.Statistics.TotalReturnPct,
			&g.Statistics.FinalCapital, &g.Statistics.AvgHoldDays); err != nil {
			return nil, nil, err
		}
		g.Trades = []astock.Trade{}
		groups = append(groups, g)
		groupIDs = append(groupIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for i, groupID := range groupIDs {
		trades, err := s.loadTrades(ctx, groupID)
		if err != nil {
			return nil, nil, err
		}
		groups[i].Trades = trades
	}
	return groups, combined, nil
}

func (s *SQLiteStore) loadTrades(ctx context.Context, groupID int64) ([]astock.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, stock_code, stock_name, buy_date, buy_price,
		       sell_date, sell_price, shares, profit, profit_pct, sell_reason, hold_days
		FROM trades WHERE group_id = ? ORDER BY trade_id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := []astock.Trade{}
	for rows.Next() {
		var t astock.Trade
		if err := rows.Scan(&t.TradeID, &t.StockCode, &t.StockName, &t.BuyDate, &t.BuyPrice,
			&t.SellDate, &t.SellPrice, &t.Shares, &t.Profit, &t.ProfitPct,
			&t.SellReason, &t.HoldDays); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
