// Package ledger persists reconciled trades in the append-only trade
// ledger. The canonical ledger is a flat CSV file with a stable column
// order; a sqlite store mirrors it for reporting queries.
package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zt/zerotheta-data/internal/reconcile"
)

// Header is the stable column order of the ledger schema.
var Header = []string{
	"date", "trade_type", "symbol", "strikes", "entry_action", "entry_time",
	"entry_price", "exit_action", "exit_price", "profit", "status", "strategy",
}

const (
	dayLayout  = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

// Row is one ledger record, already formatted to the schema's string
// conventions: two-decimal prices, empty exit columns while open.
type Row struct {
	Date        string
	TradeType   string
	Symbol      string
	Strikes     string
	EntryAction string
	EntryTime   string
	EntryPrice  string
	ExitAction  string
	ExitPrice   string
	Profit      string
	Status      string
	Strategy    string
}

// FromTrade formats a reconciled trade into a ledger row. Timestamps are
// rendered in the local timezone of the execution.
func FromTrade(t reconcile.Trade) Row {
	local := t.EntryTime.Local()
	r := Row{
		Date:        local.Format(dayLayout),
		TradeType:   string(t.Type),
		Symbol:      t.Symbol,
		Strikes:     t.Strikes,
		EntryAction: string(t.EntryAction),
		EntryTime:   local.Format(timeLayout),
		EntryPrice:  fmt.Sprintf("%.2f", t.EntryPrice),
		ExitAction:  string(t.ExitAction),
		Profit:      fmt.Sprintf("%.2f", t.Profit),
		Status:      string(t.Status()),
		Strategy:    t.Strategy,
	}
	// A zero exit price renders empty, not "0.00".
	if t.Closed && t.ExitPrice != 0 {
		r.ExitPrice = fmt.Sprintf("%.2f", t.ExitPrice)
	}
	return r
}

func (r Row) record() []string {
	return []string{
		r.Date, r.TradeType, r.Symbol, r.Strikes, r.EntryAction, r.EntryTime,
		r.EntryPrice, r.ExitAction, r.ExitPrice, r.Profit, r.Status, r.Strategy,
	}
}

func rowFromRecord(rec []string) (Row, error) {
	if len(rec) != len(Header) {
		return Row{}, fmt.Errorf("ledger row has %d columns, want %d", len(rec), len(Header))
	}
	return Row{
		Date: rec[0], TradeType: rec[1], Symbol: rec[2], Strikes: rec[3],
		EntryAction: rec[4], EntryTime: rec[5], EntryPrice: rec[6],
		ExitAction: rec[7], ExitPrice: rec[8], Profit: rec[9],
		Status: rec[10], Strategy: rec[11],
	}, nil
}

// Day parses the row's trade date.
func (r Row) Day() (time.Time, error) {
	return time.ParseInLocation(dayLayout, r.Date, time.Local)
}

// Entry parses the row's full entry timestamp.
func (r Row) Entry() (time.Time, error) {
	return time.ParseInLocation(timeLayout, r.EntryTime, time.Local)
}

// ProfitValue parses the row's profit column.
func (r Row) ProfitValue() (float64, error) {
	return strconv.ParseFloat(r.Profit, 64)
}

// IsClosed reports whether the row represents a closed trade.
func (r Row) IsClosed() bool { return r.Status == string(reconcile.StatusClosed) }

// Ledger is the append-only trade store. Appending never reads back or
// deduplicates: re-running collection over overlapping executions
// produces duplicate rows. Single-writer contract.
type Ledger interface {
	Append(Row) error
	ReadAll() ([]Row, error)
}
