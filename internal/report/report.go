// Package report computes presentation aggregates over ledger rows.
//
// Rows arrive already reconciled and already priced; nothing here pairs
// rows back together or recomputes profit. Profit figures aggregate
// closed trades only — open rows carry no realized P&L.
package report

import (
	"sort"
	"time"

	"github.com/zt/zerotheta-data/internal/ledger"
)

// Filter restricts the rows an aggregate sees. Zero times mean
// unbounded; empty slices mean no restriction.
type Filter struct {
	From       time.Time
	To         time.Time
	TradeTypes []string
	Strategies []string
}

// Apply returns the rows matching the filter, in input order. Rows whose
// date column does not parse are dropped.
func Apply(rows []ledger.Row, f Filter) []ledger.Row {
	var out []ledger.Row
	for _, r := range rows {
		day, err := r.Day()
		if err != nil {
			continue
		}
		if !f.From.IsZero() && day.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && day.After(f.To) {
			continue
		}
		if len(f.TradeTypes) > 0 && !contains(f.TradeTypes, r.TradeType) {
			continue
		}
		if len(f.Strategies) > 0 && !contains(f.Strategies, r.Strategy) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Summary is the performance overview: one figure per dashboard metric.
type Summary struct {
	DaysTraded   int     `json:"days_traded"`
	TotalTrades  int     `json:"total_trades"`
	ClosedTrades int     `json:"closed_trades"`
	TotalProfit  float64 `json:"total_profit"`
	AvgProfit    float64 `json:"avg_profit"`
	WinRate      float64 `json:"win_rate"` // percent of closed trades with positive profit
}

// Summarize aggregates the given rows.
func Summarize(rows []ledger.Row) Summary {
	var sum Summary
	days := make(map[string]bool)
	wins := 0

	for _, r := range rows {
		days[r.Date] = true
		sum.TotalTrades++
		if !r.IsClosed() {
			continue
		}
		p, err := r.ProfitValue()
		if err != nil {
			continue
		}
		sum.ClosedTrades++
		sum.TotalProfit += p
		if p > 0 {
			wins++
		}
	}

	sum.DaysTraded = len(days)
	if sum.ClosedTrades > 0 {
		sum.AvgProfit = sum.TotalProfit / float64(sum.ClosedTrades)
		sum.WinRate = float64(wins) / float64(sum.ClosedTrades) * 100
	}
	return sum
}

// DailyRow is one date's aggregate, newest first in Daily's output.
type DailyRow struct {
	Date        string  `json:"date"`
	Trades      int     `json:"trades"`
	TotalProfit float64 `json:"total_profit"`
	AvgProfit   float64 `json:"avg_profit"`
}

// Daily groups rows by trade date.
func Daily(rows []ledger.Row) []DailyRow {
	byDate := make(map[string]*DailyRow)
	closed := make(map[string]int)

	for _, r := range rows {
		d, ok := byDate[r.Date]
		if !ok {
			d = &DailyRow{Date: r.Date}
			byDate[r.Date] = d
		}
		d.Trades++
		if !r.IsClosed() {
			continue
		}
		if p, err := r.ProfitValue(); err == nil {
			d.TotalProfit += p
			closed[r.Date]++
		}
	}

	out := make([]DailyRow, 0, len(byDate))
	for date, d := range byDate {
		if n := closed[date]; n > 0 {
			d.AvgProfit = d.TotalProfit / float64(n)
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// StrategyRow is one strategy's aggregate.
type StrategyRow struct {
	Strategy    string  `json:"strategy"`
	Trades      int     `json:"trades"`
	TotalProfit float64 `json:"total_profit"`
}

// ByStrategy groups rows by strategy label, sorted by label.
func ByStrategy(rows []ledger.Row) []StrategyRow {
	byStrategy := make(map[string]*StrategyRow)
	for _, r := range rows {
		s, ok := byStrategy[r.Strategy]
		if !ok {
			s = &StrategyRow{Strategy: r.Strategy}
			byStrategy[r.Strategy] = s
		}
		s.Trades++
		if r.IsClosed() {
			if p, err := r.ProfitValue(); err == nil {
				s.TotalProfit += p
			}
		}
	}

	out := make([]StrategyRow, 0, len(byStrategy))
	for _, s := range byStrategy {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out
}
