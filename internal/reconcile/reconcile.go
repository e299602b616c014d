// Package reconcile reconstructs logical trades from raw execution fills.
//
// The gateway reports a multi-leg order as individual leg executions plus
// one combo-level execution carrying the net price (negative for a credit).
// Fills are grouped by permanent order id and bucketed by execution time:
// the earliest bucket is the opening transaction, the next one the close.
// Reconciliation is a pure function from fills to trades; every consumer
// (ledger import, CLI reporting, the HTTP API) reads the priced rows
// verbatim and never recomputes profit.
package reconcile

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
)

// Multiplier converts option quote prices to currency units.
const Multiplier = 100

// Reconcile groups fills into trades, classifies each trade's structure,
// and computes realized profit. The strategy label is carried through
// opaquely. The order of returned trades follows earliest entry time.
func Reconcile(fills []Fill, strategy string) []Trade {
	groups := groupFills(fills)
	trades := make([]Trade, 0, len(groups))
	for _, g := range groups {
		t, ok := buildTrade(g, strategy)
		if !ok {
			continue
		}
		trades = append(trades, t)
	}
	return trades
}

func buildTrade(g OrderGroup, strategy string) (Trade, bool) {
	if len(g.Buckets) == 0 || len(g.Buckets[0]) == 0 {
		return Trade{}, false
	}
	opening := g.Buckets[0]

	entryPrice, entryAction, rep := entryPricing(g.PermID, opening)

	t := Trade{
		EntryTime:   rep.Time,
		Type:        classify(opening),
		Symbol:      rep.Symbol,
		Strikes:     renderStrikes(opening),
		EntryAction: entryAction,
		EntryPrice:  entryPrice,
		Strategy:    strategy,
	}

	// Buckets past the second are ignored: the second-earliest bucket is
	// treated as the closing event. Known limitation of the correlation rule.
	if len(g.Buckets) > 1 {
		exitPrice, exitAction := exitPricing(g.PermID, g.Buckets[1])
		t.ExitPrice = exitPrice
		t.ExitAction = exitAction
		t.Closed = true
		// Realized only. Open positions never carry an unrealized mark.
		t.Profit = (entryPrice - exitPrice) * Multiplier
	}
	return t, true
}

// entryPricing derives the normalized entry price and action from the
// opening bucket. If the bucket carries a combo-level fill its net price
// wins; otherwise the price is reconstructed from the per-side leg sums.
// The returned fill is the one representing the trade's instrument and
// timestamp.
func entryPricing(permID int64, opening []Fill) (float64, Side, Fill) {
	var combo *Fill
	var legs []Fill
	for i := range opening {
		if opening[i].isCombo() {
			combo = &opening[i]
		} else {
			legs = append(legs, opening[i])
		}
	}

	if combo != nil {
		return math.Abs(combo.Price), combo.Side, *combo
	}

	var credit, debit float64
	for _, f := range legs {
		if f.Side == Sld {
			credit += f.Price
		} else {
			debit += f.Price
		}
	}
	if credit == debit {
		slog.Warn("ambiguous reconciliation: symmetric credit/debit on opening legs",
			"perm_id", permID, "credit", fmt.Sprintf("%.2f", credit))
	}
	action := Sld
	if credit > debit {
		action = Bot
	}
	return math.Abs(credit - debit), action, opening[0]
}

// exitPricing derives the exit price and action from the closing bucket.
// Preferred path: the sold combo-level fill reported with a negative net
// price (paying to close). Fallback: per-side sums over the strictly
// positive leg prices. The fallback keeps the sign of debit-credit while
// the entry path takes an absolute value; both branches are pinned as-is.
func exitPricing(permID int64, closing []Fill) (float64, Side) {
	for _, f := range closing {
		if f.isClosingCombo() {
			return math.Abs(f.Price), Sld
		}
	}

	var credit, debit float64
	for _, f := range closing {
		if f.Price <= 0 {
			continue
		}
		switch f.Side {
		case Sld:
			credit += f.Price
		case Bot:
			debit += f.Price
		}
	}
	if credit == debit {
		slog.Warn("ambiguous reconciliation: symmetric credit/debit on closing legs",
			"perm_id", permID, "credit", fmt.Sprintf("%.2f", credit))
	}
	action := Bot
	if credit > debit {
		action = Sld
	}
	return debit - credit, action
}

// renderStrikes collects the strikes present anywhere in the opening
// bucket (combo and legs alike), sorted ascending. Only the two smallest
// are rendered; with two-leg spreads more than two never appear, but extra
// strikes must not break the output.
func renderStrikes(opening []Fill) string {
	var strikes []int
	for _, f := range opening {
		if f.Strike > 0 {
			strikes = append(strikes, int(f.Strike))
		}
	}
	sort.Ints(strikes)
	switch {
	case len(strikes) >= 2:
		return fmt.Sprintf("%d/%d", strikes[0], strikes[1])
	case len(strikes) == 1:
		return strconv.Itoa(strikes[0])
	default:
		return "unknown"
	}
}

// classify derives the trade type from the option rights in the opening
// bucket: any put makes it a Bull Put, else any call a Bear Call.
func classify(opening []Fill) TradeType {
	hasCall := false
	for _, f := range opening {
		switch f.Right {
		case "P":
			return BullPut
		case "C":
			hasCall = true
		}
	}
	if hasCall {
		return BearCall
	}
	return TypeUnknown
}
