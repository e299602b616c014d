package reconcile

import "time"

// Side is the execution side as reported by the gateway.
type Side string

const (
	Bot Side = "BOT" // bought
	Sld Side = "SLD" // sold
)

// Kind tags a fill's structural role when the feed reports it explicitly.
// KindUnknown defers to the price-sign heuristic: the gateway encodes
// multi-leg net pricing as a negative price on the combo-level fill.
type Kind int

const (
	KindUnknown Kind = iota
	KindLeg
	KindCombo
)

// Fill is one reported execution. All fills of one logical order — every
// leg of a spread plus the combo-level record, and later the closing
// executions — share the same PermID.
type Fill struct {
	PermID   int64
	Time     time.Time
	Side     Side
	Price    float64 // net credit is negative on combo-level fills
	Quantity int
	Symbol   string
	SecType  string
	Strike   float64 // 0 when the contract carries no strike
	Right    string  // "P" or "C", empty when not an option leg
	Kind     Kind
}

// isCombo reports whether the fill is the combo-level net execution of a
// multi-leg order. An explicit Kind from the source adapter wins; untagged
// fills fall back to the sign convention.
func (f Fill) isCombo() bool {
	switch f.Kind {
	case KindCombo:
		return true
	case KindLeg:
		return false
	}
	return f.Price < 0
}

// isClosingCombo reports whether the fill is the combo-level execution of
// a closing transaction: sold, with the net price reported negative
// (paying to close a credit spread).
func (f Fill) isClosingCombo() bool {
	if f.Side != Sld {
		return false
	}
	switch f.Kind {
	case KindCombo:
		return true
	case KindLeg:
		return false
	}
	return f.Price < 0
}
