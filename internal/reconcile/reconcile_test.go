package reconcile

import (
	"math"
	"testing"
	"time"
)

var entry = time.Date(2025, 6, 2, 9, 45, 12, 0, time.UTC)

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// A two-leg opening bucket the way the gateway reports it: both legs plus
// the combo-level net execution sharing one timestamp.
func spreadOpening(permID int64) []Fill {
	return []Fill{
		{PermID: permID, Time: entry, Side: Sld, Price: -3.50, Symbol: "SPX"},
		{PermID: permID, Time: entry, Side: Sld, Price: 5.00, Symbol: "SPX", Strike: 95, Right: "P"},
		{PermID: permID, Time: entry, Side: Bot, Price: 1.50, Symbol: "SPX", Strike: 90, Right: "P"},
	}
}

func TestReconcileOpenTrade(t *testing.T) {
	trades := Reconcile(spreadOpening(1001), "TrendStochRSI")
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]

	if tr.Status() != StatusOpen {
		t.Errorf("status = %q, want open", tr.Status())
	}
	if tr.Closed || tr.ExitAction != "" {
		t.Errorf("open trade has exit: closed=%v action=%q", tr.Closed, tr.ExitAction)
	}
	if tr.Profit != 0 {
		t.Errorf("open trade profit = %v, want 0", tr.Profit)
	}
	if tr.EntryAction != Sld || !closeTo(tr.EntryPrice, 3.50) {
		t.Errorf("entry = %s %.2f, want SLD 3.50", tr.EntryAction, tr.EntryPrice)
	}
	if tr.Type != BullPut {
		t.Errorf("type = %q, want Bull Put", tr.Type)
	}
	if tr.Strikes != "90/95" {
		t.Errorf("strikes = %q, want 90/95", tr.Strikes)
	}
	if tr.Symbol != "SPX" {
		t.Errorf("symbol = %q", tr.Symbol)
	}
	if !tr.EntryTime.Equal(entry) {
		t.Errorf("entry time = %v", tr.EntryTime)
	}
	if tr.Strategy != "TrendStochRSI" {
		t.Errorf("strategy = %q", tr.Strategy)
	}
}

func TestEntryPricingLegFallback(t *testing.T) {
	fills := []Fill{
		{PermID: 7, Time: entry, Side: Sld, Price: 5.00, Symbol: "SPX", Strike: 95, Right: "P"},
		{PermID: 7, Time: entry, Side: Bot, Price: 1.50, Symbol: "SPX", Strike: 90, Right: "P"},
	}
	tr := Reconcile(fills, "x")[0]
	if tr.EntryAction != Sld || !closeTo(tr.EntryPrice, 3.50) {
		t.Errorf("entry = %s %.2f, want SLD 3.50 (credit > debit)", tr.EntryAction, tr.EntryPrice)
	}
}

func TestEntryPricingLegFallbackDebit(t *testing.T) {
	// credit > debit reports BOT; the naming is the feed's, not ours.
	fills := []Fill{
		{PermID: 8, Time: entry, Side: Sld, Price: 4.00, Symbol: "SPX"},
		{PermID: 8, Time: entry, Side: Bot, Price: 1.00, Symbol: "SPX"},
	}
	tr := Reconcile(fills, "x")[0]
	if tr.EntryAction != Bot {
		t.Errorf("entry action = %s, want BOT when credit > debit", tr.EntryAction)
	}

	// Symmetric credit/debit tie-breaks to SLD.
	fills = []Fill{
		{PermID: 9, Time: entry, Side: Sld, Price: 2.00, Symbol: "SPX"},
		{PermID: 9, Time: entry, Side: Bot, Price: 2.00, Symbol: "SPX"},
	}
	tr = Reconcile(fills, "x")[0]
	if tr.EntryAction != Sld || tr.EntryPrice != 0 {
		t.Errorf("tie entry = %s %.2f, want SLD 0.00", tr.EntryAction, tr.EntryPrice)
	}
}

func TestExplicitComboKindOverridesSign(t *testing.T) {
	// Adapter-tagged combo with a positive (net debit) price still wins
	// over the sign heuristic.
	fills := []Fill{
		{PermID: 3, Time: entry, Side: Bot, Price: 2.25, Symbol: "SPX", Kind: KindCombo},
		{PermID: 3, Time: entry, Side: Bot, Price: 4.00, Symbol: "SPX", Strike: 100, Right: "C", Kind: KindLeg},
		{PermID: 3, Time: entry, Side: Sld, Price: 1.75, Symbol: "SPX", Strike: 105, Right: "C", Kind: KindLeg},
	}
	tr := Reconcile(fills, "x")[0]
	if tr.EntryAction != Bot || !closeTo(tr.EntryPrice, 2.25) {
		t.Errorf("entry = %s %.2f, want BOT 2.25 from tagged combo", tr.EntryAction, tr.EntryPrice)
	}
	if tr.Type != BearCall {
		t.Errorf("type = %q, want Bear Call", tr.Type)
	}
}

func TestClosingFallbackProfit(t *testing.T) {
	exit := entry.Add(2 * time.Hour)
	fills := append(spreadOpening(42),
		// Buying the spread back for a net 1.00. No combo-level record
		// (negative price) in the closing bucket, so the leg fallback runs.
		Fill{PermID: 42, Time: exit, Side: Bot, Price: 1.00, Symbol: "SPX", Strike: 95, Right: "P"},
	)
	tr := Reconcile(fills, "x")[0]

	if tr.Status() != StatusClosed {
		t.Fatalf("status = %q, want closed", tr.Status())
	}
	if tr.ExitAction != Bot || !closeTo(tr.ExitPrice, 1.00) {
		t.Errorf("exit = %s %.2f, want BOT 1.00", tr.ExitAction, tr.ExitPrice)
	}
	if !closeTo(tr.Profit, 250.00) {
		t.Errorf("profit = %.2f, want 250.00", tr.Profit)
	}
}

func TestClosingComboPath(t *testing.T) {
	exit := entry.Add(3 * time.Hour)
	fills := append(spreadOpening(43),
		Fill{PermID: 43, Time: exit, Side: Sld, Price: -1.20, Symbol: "SPX"},
		Fill{PermID: 43, Time: exit, Side: Bot, Price: 4.10, Symbol: "SPX", Strike: 95, Right: "P"},
		Fill{PermID: 43, Time: exit, Side: Sld, Price: 2.90, Symbol: "SPX", Strike: 90, Right: "P"},
	)
	tr := Reconcile(fills, "x")[0]

	if tr.ExitAction != Sld || !closeTo(tr.ExitPrice, 1.20) {
		t.Errorf("exit = %s %.2f, want SLD 1.20 from combo", tr.ExitAction, tr.ExitPrice)
	}
	if !closeTo(tr.Profit, 230.00) {
		t.Errorf("profit = %.2f, want 230.00", tr.Profit)
	}
}

func TestClosingFallbackKeepsSign(t *testing.T) {
	// Exit is debit - credit without an absolute value, unlike entry.
	// A credit-only closing bucket therefore yields a negative exit price.
	exit := entry.Add(time.Hour)
	fills := append(spreadOpening(44),
		Fill{PermID: 44, Time: exit, Side: Sld, Price: 1.00, Symbol: "SPX", Strike: 95, Right: "P"},
	)
	tr := Reconcile(fills, "x")[0]

	if tr.ExitAction != Sld || !closeTo(tr.ExitPrice, -1.00) {
		t.Errorf("exit = %s %.2f, want SLD -1.00", tr.ExitAction, tr.ExitPrice)
	}
	if !closeTo(tr.Profit, 450.00) {
		t.Errorf("profit = %.2f, want 450.00", tr.Profit)
	}
}

func TestBucketsPastSecondIgnored(t *testing.T) {
	fills := append(spreadOpening(45),
		Fill{PermID: 45, Time: entry.Add(time.Hour), Side: Bot, Price: 1.00, Symbol: "SPX"},
		Fill{PermID: 45, Time: entry.Add(2 * time.Hour), Side: Bot, Price: 9.99, Symbol: "SPX"},
	)
	tr := Reconcile(fills, "x")[0]
	if !closeTo(tr.ExitPrice, 1.00) {
		t.Errorf("exit price = %.2f, want 1.00 from second bucket only", tr.ExitPrice)
	}
}

func TestRenderStrikes(t *testing.T) {
	tests := []struct {
		name  string
		fills []Fill
		want  string
	}{
		{"two strikes any order", []Fill{{Strike: 95}, {Strike: 90}}, "90/95"},
		{"single strike", []Fill{{Strike: 100}}, "100"},
		{"no strikes", []Fill{{Symbol: "SPX"}}, "unknown"},
		{"truncates to two smallest", []Fill{{Strike: 110}, {Strike: 95}, {Strike: 90}, {Strike: 105}}, "90/95"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderStrikes(tt.fills); got != tt.want {
				t.Errorf("renderStrikes = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		fills []Fill
		want  TradeType
	}{
		{"put legs", []Fill{{Right: "P"}, {Right: "P"}}, BullPut},
		{"call legs", []Fill{{Right: "C"}, {Right: "C"}}, BearCall},
		{"put wins over call", []Fill{{Right: "C"}, {Right: "P"}}, BullPut},
		{"no rights", []Fill{{Symbol: "SPX"}}, TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.fills); got != tt.want {
				t.Errorf("classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReconcileEmpty(t *testing.T) {
	if trades := Reconcile(nil, "x"); len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
}
