package matching

import (
	"fmt"

	"github.com/google/uuid"
)

// Event is the closed set of messages the matching core publishes to its
// sink. One function on the sink (EventSink.Publish in
// internal/eventsink) accepts the tagged variant and type-switches on it,
// collapsing the teacher's per-kind virtual handler dispatch per
// spec.md §9.
type Event interface {
	isEvent()
}

// SymbolAdded is emitted once, the first time a symbol's book is created.
type SymbolAdded struct {
	SymbolID uint32
}

// SymbolDeleted is emitted when a book is removed. Supplements spec.md
// per SPEC_FULL.md #1 (original_source carries SymbolDeleted alongside
// SymbolAdded).
type SymbolDeleted struct {
	SymbolID uint32
}

// OrderAdded is emitted when a Limit GTC order rests on the book with a
// nonzero open quantity (never for an order that fully matched away).
type OrderAdded struct {
	Order Order
}

// OrderUpdated is emitted whenever a resting maker's open quantity
// changes due to a partial fill, but the maker remains resting.
type OrderUpdated struct {
	Order Order
}

// OrderExecuted reports one side of a fill: either the resting maker or
// the incoming taker.
type OrderExecuted struct {
	OrderID          uint64
	ExecutedPrice    uint64
	ExecutedQuantity uint64
	RemainingQty     uint64
}

// OrderDeleted is emitted when an order leaves the book (filled,
// canceled, or — for a non-resting taker — unfilled/partially unfilled).
type OrderDeleted struct {
	OrderID uint64
	Reason  DeleteReason
}

// OrderRejected is emitted for an order that never touched the book.
type OrderRejected struct {
	OrderID uint64
	Reason  RejectReason
}

// CancelRejected is emitted when a CancelOrder names an order that is not
// currently resting.
type CancelRejected struct {
	OrderID uint64
}

// Trade reports one match between a resting maker and an incoming taker.
// TradeID is a supplemented field (see SPEC_FULL.md domain stack): every
// execution-reporting venue in the corpus stamps a unique id on a trade,
// which the distilled spec.md's Trade event omits.
type Trade struct {
	TradeID     uuid.UUID
	SymbolID    uint32
	Price       uint64
	Quantity    uint64
	MakerID     uint64
	TakerID     uint64
	MakerUserID uint64
	TakerUserID uint64
}

func (SymbolAdded) isEvent()    {}
func (SymbolDeleted) isEvent()  {}
func (OrderAdded) isEvent()     {}
func (OrderUpdated) isEvent()   {}
func (OrderExecuted) isEvent()  {}
func (OrderDeleted) isEvent()   {}
func (OrderRejected) isEvent()  {}
func (CancelRejected) isEvent() {}
func (Trade) isEvent()          {}

func (e SymbolAdded) String() string {
	return fmt.Sprintf("SymbolAdded{symbol=%d}", e.SymbolID)
}

func (e SymbolDeleted) String() string {
	return fmt.Sprintf("SymbolDeleted{symbol=%d}", e.SymbolID)
}

func (e OrderAdded) String() string {
	return fmt.Sprintf("OrderAdded{%s}", e.Order)
}

func (e OrderUpdated) String() string {
	return fmt.Sprintf("OrderUpdated{%s}", e.Order)
}

func (e OrderExecuted) String() string {
	return fmt.Sprintf("OrderExecuted{order=%d price=%d qty=%d remaining=%d}",
		e.OrderID, e.ExecutedPrice, e.ExecutedQuantity, e.RemainingQty)
}

func (e OrderDeleted) String() string {
	return fmt.Sprintf("OrderDeleted{order=%d reason=%s}", e.OrderID, e.Reason)
}

func (e OrderRejected) String() string {
	return fmt.Sprintf("OrderRejected{order=%d reason=%s}", e.OrderID, e.Reason)
}

func (e CancelRejected) String() string {
	return fmt.Sprintf("CancelRejected{order=%d}", e.OrderID)
}

func (e Trade) String() string {
	return fmt.Sprintf("Trade{id=%s symbol=%d price=%d qty=%d maker=%d taker=%d}",
		e.TradeID, e.SymbolID, e.Price, e.Quantity, e.MakerID, e.TakerID)
}
