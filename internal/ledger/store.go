package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// Store is the embedded reporting copy of the ledger. It is rebuilt
// wholesale from the CSV ledger (replace, not merge) so the aggregate
// views never drift from the canonical file.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Replace rebuilds the trades table from the given ledger rows in one
// transaction.
func (s *Store) Replace(ctx context.Context, rows []Row) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trades"); err != nil {
		return 0, fmt.Errorf("clearing trades: %w", err)
	}

	n := 0
	for _, r := range rows {
		if err := insertRow(ctx, tx, r); err != nil {
			return 0, err
		}
		n++
	}
	return n, tx.Commit()
}

func insertRow(ctx context.Context, tx *sql.Tx, r Row) error {
	// Raw-export rows leave numeric columns empty; import them as zero.
	entryPrice, err := parseMoney(r.EntryPrice)
	if err != nil {
		return fmt.Errorf("parsing entry_price %q: %w", r.EntryPrice, err)
	}
	profit, err := parseMoney(r.Profit)
	if err != nil {
		return fmt.Errorf("parsing profit %q: %w", r.Profit, err)
	}

	var exitPrice sql.NullFloat64
	if r.ExitPrice != "" {
		v, err := strconv.ParseFloat(r.ExitPrice, 64)
		if err != nil {
			return fmt.Errorf("parsing exit_price %q: %w", r.ExitPrice, err)
		}
		exitPrice = sql.NullFloat64{Float64: v, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trades (date, trade_type, symbol, strikes, entry_action,
			entry_time, entry_price, exit_action, exit_price, profit, status, strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Date, r.TradeType, r.Symbol, r.Strikes, r.EntryAction,
		r.EntryTime, entryPrice, r.ExitAction, exitPrice, profit, r.Status, r.Strategy,
	)
	return err
}

func parseMoney(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// DailyPnL is a row from the v_daily_pnl view.
type DailyPnL struct {
	Date   string
	Trades int
	Closed int
	Profit float64
	Wins   int
}

func (s *Store) DailyPnL(ctx context.Context) ([]DailyPnL, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, trades, closed, profit, wins FROM v_daily_pnl`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailyPnL
	for rows.Next() {
		var d DailyPnL
		if err := rows.Scan(&d.Date, &d.Trades, &d.Closed, &d.Profit, &d.Wins); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// StrategyPnL is a row from the v_strategy_pnl view.
type StrategyPnL struct {
	Strategy string
	Trades   int
	Closed   int
	Profit   float64
}

func (s *Store) StrategyPnL(ctx context.Context) ([]StrategyPnL, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT strategy, trades, closed, profit FROM v_strategy_pnl`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StrategyPnL
	for rows.Next() {
		var p StrategyPnL
		if err := rows.Scan(&p.Strategy, &p.Trades, &p.Closed, &p.Profit); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// Summary aggregates the whole trades table.
type Summary struct {
	DaysTraded  int
	Trades      int
	Closed      int
	Wins        int
	TotalProfit float64
}

func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT date),
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'closed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'closed' AND profit > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'closed' THEN profit ELSE 0 END), 0)
		FROM trades`,
	).Scan(&sum.DaysTraded, &sum.Trades, &sum.Closed, &sum.Wins, &sum.TotalProfit)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Trades returns the most recent trades by entry time.
func (s *Store) Trades(ctx context.Context, limit int) ([]Row, error) {
	return s.queryRows(ctx, `
		SELECT date, trade_type, symbol, strikes, entry_action, entry_time,
			entry_price, exit_action, exit_price, profit, status, strategy
		FROM trades ORDER BY entry_time DESC LIMIT ?`, limit)
}

// OpenTrades returns trades that have no closing transaction yet.
func (s *Store) OpenTrades(ctx context.Context) ([]Row, error) {
	return s.queryRows(ctx, `
		SELECT date, trade_type, symbol, strikes, entry_action, entry_time,
			entry_price, exit_action, exit_price, profit, status, strategy
		FROM trades WHERE status = 'open' ORDER BY entry_time DESC`)
}

func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Row
	for rows.Next() {
		var r Row
		var entryPrice, profit float64
		var exitPrice sql.NullFloat64
		if err := rows.Scan(&r.Date, &r.TradeType, &r.Symbol, &r.Strikes,
			&r.EntryAction, &r.EntryTime, &entryPrice, &r.ExitAction,
			&exitPrice, &profit, &r.Status, &r.Strategy); err != nil {
			return nil, err
		}
		r.EntryPrice = fmt.Sprintf("%.2f", entryPrice)
		r.Profit = fmt.Sprintf("%.2f", profit)
		if exitPrice.Valid {
			r.ExitPrice = fmt.Sprintf("%.2f", exitPrice.Float64)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
