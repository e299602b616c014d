package reconcile

import "time"

// TradeType classifies the spread structure by the option rights present.
// This is a credit-spread heuristic, not a general options classifier: it
// does not separate bull from bear call spreads by strike direction.
type TradeType string

const (
	BullPut     TradeType = "Bull Put"
	BearCall    TradeType = "Bear Call"
	TypeUnknown TradeType = "unknown"
)

// Status of a reconciled trade.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Trade is one reconciled logical trade, synthesized once per permanent
// order id per run. It is never mutated after creation.
type Trade struct {
	EntryTime   time.Time
	Type        TradeType
	Symbol      string
	Strikes     string // "90/95", "100", or "unknown"
	EntryAction Side
	EntryPrice  float64 // unsigned magnitude of the net opening price
	ExitAction  Side    // empty while open
	ExitPrice   float64
	Closed      bool
	Profit      float64 // realized, in currency units (contract multiplier 100)
	Strategy    string
}

// Status returns open or closed.
func (t Trade) Status() Status {
	if t.Closed {
		return StatusClosed
	}
	return StatusOpen
}
