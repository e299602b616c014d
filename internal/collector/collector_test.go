package collector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/zt/zerotheta-data/internal/ledger"
	"github.com/zt/zerotheta-data/internal/reconcile"
)

type stubSource struct {
	fills []reconcile.Fill
	err   error
}

func (s stubSource) Executions(ctx context.Context) ([]reconcile.Fill, error) {
	return s.fills, s.err
}

func sessionFills() []reconcile.Fill {
	entry := time.Date(2025, 6, 2, 9, 45, 12, 0, time.Local)
	exit := entry.Add(2 * time.Hour)
	return []reconcile.Fill{
		// Closed bull put spread.
		{PermID: 1, Time: entry, Side: reconcile.Sld, Price: -3.50, Symbol: "SPX"},
		{PermID: 1, Time: entry, Side: reconcile.Sld, Price: 5.00, Symbol: "SPX", Strike: 95, Right: "P"},
		{PermID: 1, Time: entry, Side: reconcile.Bot, Price: 1.50, Symbol: "SPX", Strike: 90, Right: "P"},
		{PermID: 1, Time: exit, Side: reconcile.Bot, Price: 1.00, Symbol: "SPX", Strike: 95, Right: "P"},
		// Still-open bear call spread.
		{PermID: 2, Time: entry.Add(time.Minute), Side: reconcile.Sld, Price: -2.00, Symbol: "SPX"},
		{PermID: 2, Time: entry.Add(time.Minute), Side: reconcile.Sld, Price: 3.00, Symbol: "SPX", Strike: 105, Right: "C"},
		{PermID: 2, Time: entry.Add(time.Minute), Side: reconcile.Bot, Price: 1.00, Symbol: "SPX", Strike: 110, Right: "C"},
	}
}

func TestRunWritesTrades(t *testing.T) {
	lg := ledger.NewCSV(filepath.Join(t.TempDir(), "results.csv"))

	n, err := Run(context.Background(), stubSource{fills: sessionFills()}, lg, "TrendStochRSI")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("wrote %d trades, want 2", n)
	}

	rows, err := lg.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("ledger has %d rows, want 2", len(rows))
	}

	closed, open := rows[0], rows[1]
	if closed.Status != "closed" || closed.Profit != "250.00" || closed.TradeType != "Bull Put" {
		t.Errorf("closed row = %+v", closed)
	}
	if open.Status != "open" || open.ExitPrice != "" || open.TradeType != "Bear Call" {
		t.Errorf("open row = %+v", open)
	}
	if closed.Strategy != "TrendStochRSI" {
		t.Errorf("strategy = %q", closed.Strategy)
	}
}

func TestRunEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	n, err := Run(context.Background(), stubSource{}, ledger.NewCSV(path), "x")
	if err != nil || n != 0 {
		t.Fatalf("empty session: n=%d err=%v, want 0, nil", n, err)
	}
	// No fills means no file: not even a header.
	if rows, _ := ledger.NewCSV(path).ReadAll(); rows != nil {
		t.Errorf("ledger not empty: %+v", rows)
	}
}

func TestRunSourceError(t *testing.T) {
	src := stubSource{err: errors.New("gateway down")}
	if _, err := Run(context.Background(), src, ledger.NewCSV(filepath.Join(t.TempDir(), "r.csv")), "x"); err == nil {
		t.Fatal("expected source error to propagate")
	}
}

func TestExportRaw(t *testing.T) {
	lg := ledger.NewCSV(filepath.Join(t.TempDir(), "results.csv"))
	entry := time.Date(2025, 6, 2, 9, 45, 12, 0, time.Local)
	fills := []reconcile.Fill{
		{PermID: 1, Time: entry, Side: reconcile.Sld, Price: 5.00, Symbol: "SPX", Strike: 95, Right: "P"},
		{PermID: 1, Time: entry, Side: reconcile.Bot, Price: 1.50, Symbol: "SPX", Strike: 90, Right: "P"},
	}

	n, err := ExportRaw(context.Background(), stubSource{fills: fills}, lg, "x")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("exported %d rows, want 2", n)
	}

	rows, err := lg.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	sold := rows[0]
	if sold.TradeType != "spread_leg" || sold.Status != "executed" {
		t.Errorf("sold row = %+v", sold)
	}
	if sold.EntryAction != "SLD" || sold.EntryPrice != "5.00" || sold.ExitPrice != "" {
		t.Errorf("sold row columns = %+v", sold)
	}
	bought := rows[1]
	if bought.ExitAction != "BOT" || bought.ExitPrice != "1.50" || bought.EntryPrice != "" {
		t.Errorf("bought row columns = %+v", bought)
	}
	if bought.Strikes != "90" {
		t.Errorf("strikes = %q, want 90", bought.Strikes)
	}
}
