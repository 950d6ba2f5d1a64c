package matching

// Command is the closed set of messages a shard worker accepts. The
// matcher that dispatches on it (internal/engine) must be exhaustive: a
// type switch over these four concrete types, no default silently
// swallowing an unrecognized variant, per spec.md §9's "tagged union
// matched exhaustively."
type Command interface {
	isCommand()
}

// AddOrderBook creates a book for SymbolID if one does not already exist.
// Idempotent: a second AddOrderBook for the same symbol is a silent no-op
// (see SPEC_FULL.md "Open Questions Resolved").
type AddOrderBook struct {
	SymbolID uint32
}

// RemoveOrderBook deletes the book for SymbolID, rejecting any order
// already resting in it is not attempted — callers are expected to drain
// a book before delisting it. Supplements spec.md per SPEC_FULL.md #1.
type RemoveOrderBook struct {
	SymbolID uint32
}

// PlaceOrder submits a new order for matching.
type PlaceOrder struct {
	OrderID     uint64
	UserID      uint64
	SymbolID    uint32
	Quantity    uint64
	Price       uint64
	Side        Side
	Type        OrderType
	TimeInForce TimeInForce
}

// CancelOrder cancels a resting order by id.
type CancelOrder struct {
	SymbolID uint32
	OrderID  uint64
}

// CloseQueue is the shutdown sentinel: a shard worker processes any
// commands already queued ahead of it and then exits, discarding
// anything enqueued behind it.
type CloseQueue struct{}

func (AddOrderBook) isCommand()    {}
func (RemoveOrderBook) isCommand() {}
func (PlaceOrder) isCommand()      {}
func (CancelOrder) isCommand()     {}
func (CloseQueue) isCommand()      {}
