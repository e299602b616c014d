// Package collector runs the end-of-day collection pass: fetch the
// session's executions from the gateway, reconcile them into trades, and
// append the result to the ledger.
package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zt/zerotheta-data/internal/ledger"
	"github.com/zt/zerotheta-data/internal/reconcile"
)

// Source yields the full set of execution fills for the current session.
type Source interface {
	Executions(ctx context.Context) ([]reconcile.Fill, error)
}

// Run fetches today's executions, reconciles them, and appends one row
// per trade to the ledger. Returns the number of rows written. An empty
// execution set is success with zero rows. Appending is not idempotent:
// running twice over the same session duplicates rows.
func Run(ctx context.Context, src Source, lg ledger.Ledger, strategy string) (int, error) {
	fills, err := src.Executions(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching executions: %w", err)
	}
	if len(fills) == 0 {
		slog.Info("no trades found for today")
		return 0, nil
	}
	slog.Info("processing executions", "count", len(fills))
	return WriteTrades(fills, lg, strategy)
}

// WriteTrades reconciles an already-fetched fill set and appends the
// trades to the ledger.
func WriteTrades(fills []reconcile.Fill, lg ledger.Ledger, strategy string) (int, error) {
	written := 0
	for _, t := range reconcile.Reconcile(fills, strategy) {
		row := ledger.FromTrade(t)
		if err := lg.Append(row); err != nil {
			return written, fmt.Errorf("appending trade: %w", err)
		}
		written++
		slog.Info("wrote trade",
			"symbol", t.Symbol,
			"strikes", t.Strikes,
			"type", string(t.Type),
			"action", string(t.EntryAction),
			"entry_price", row.EntryPrice,
			"status", string(t.Status()),
			"profit", row.Profit,
		)
	}
	slog.Info("collection complete", "trades", written)
	return written, nil
}

// ExportRaw writes one ledger row per execution with no reconciliation:
// sold executions fill the entry columns, bought ones the exit columns,
// and no profit is computed. Fallback for sessions whose structure the
// grouped reconciliation does not match.
func ExportRaw(ctx context.Context, src Source, lg ledger.Ledger, strategy string) (int, error) {
	fills, err := src.Executions(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching executions: %w", err)
	}
	if len(fills) == 0 {
		slog.Info("no trades found for today")
		return 0, nil
	}

	for _, f := range fills {
		if err := lg.Append(rawRow(f, strategy)); err != nil {
			return 0, fmt.Errorf("appending execution: %w", err)
		}
	}
	slog.Info("raw export complete", "executions", len(fills))
	return len(fills), nil
}

func rawRow(f reconcile.Fill, strategy string) ledger.Row {
	local := f.Time.Local()
	r := ledger.Row{
		Date:      local.Format("2006-01-02"),
		TradeType: "spread_leg",
		Symbol:    f.Symbol,
		Status:    "executed",
		Strategy:  strategy,
	}
	if f.Strike > 0 {
		r.Strikes = fmt.Sprintf("%d", int(f.Strike))
	}
	stamp := local.Format("2006-01-02 15:04:05")
	price := fmt.Sprintf("%.2f", f.Price)
	if f.Side == reconcile.Sld {
		r.EntryAction = string(f.Side)
		r.EntryTime = stamp
		r.EntryPrice = price
	} else {
		r.ExitAction = string(f.Side)
		r.ExitPrice = price
	}
	return r
}
