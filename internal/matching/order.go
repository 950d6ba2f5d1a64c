package matching

import (
	"fmt"
	"time"
)

// Order is an immutable identity plus mutable fill state. Fields set at
// admission (OrderID, SymbolID, Side, Type, TimeInForce, Price, Quantity,
// UserID) never change; ExecutedQuantity and the LastExecuted* fields are
// the only mutable state, advanced only through Execute.
type Order struct {
	OrderID     uint64
	UserID      uint64
	SymbolID    uint32
	Side        Side
	Type        OrderType
	TimeInForce TimeInForce

	// Price is in integer ticks. Zero on the aggressive side means
	// "match without a price barrier" (Market orders carry it internally).
	Price    uint64
	Quantity uint64

	ExecutedQuantity uint64

	LastExecutedPrice    uint64
	LastExecutedQuantity uint64

	// AdmittedAt is stamped by OrderBook.Place, used only for observability
	// (logging, debugging); it plays no role in matching, which relies on
	// FIFO slice position within a PriceLevel for time priority.
	AdmittedAt time.Time
}

// LimitBid constructs an admissible Limit Bid order.
func LimitBid(orderID, userID uint64, symbolID uint32, price, quantity uint64, tif TimeInForce) Order {
	return Order{OrderID: orderID, UserID: userID, SymbolID: symbolID, Side: Bid, Type: Limit, TimeInForce: tif, Price: price, Quantity: quantity}
}

// LimitAsk constructs an admissible Limit Ask order.
func LimitAsk(orderID, userID uint64, symbolID uint32, price, quantity uint64, tif TimeInForce) Order {
	return Order{OrderID: orderID, UserID: userID, SymbolID: symbolID, Side: Ask, Type: Limit, TimeInForce: tif, Price: price, Quantity: quantity}
}

// MarketBid constructs an admissible Market Bid order. Price is always 0:
// market orders match without a price barrier.
func MarketBid(orderID, userID uint64, symbolID uint32, quantity uint64, tif TimeInForce) Order {
	return Order{OrderID: orderID, UserID: userID, SymbolID: symbolID, Side: Bid, Type: Market, TimeInForce: tif, Price: 0, Quantity: quantity}
}

// MarketAsk constructs an admissible Market Ask order.
func MarketAsk(orderID, userID uint64, symbolID uint32, quantity uint64, tif TimeInForce) Order {
	return Order{OrderID: orderID, UserID: userID, SymbolID: symbolID, Side: Ask, Type: Market, TimeInForce: tif, Price: 0, Quantity: quantity}
}

func (o *Order) IsLimit() bool  { return o.Type == Limit }
func (o *Order) IsMarket() bool { return o.Type == Market }
func (o *Order) IsBid() bool    { return o.Side == Bid }
func (o *Order) IsAsk() bool    { return o.Side == Ask }
func (o *Order) IsGTC() bool    { return o.TimeInForce == GTC }
func (o *Order) IsIOC() bool    { return o.TimeInForce == IOC }
func (o *Order) IsFOK() bool    { return o.TimeInForce == FOK }

// OpenQuantity is the portion of Quantity not yet executed.
func (o *Order) OpenQuantity() uint64 {
	return o.Quantity - o.ExecutedQuantity
}

// Execute advances the order's fill state by qty at price. It fails with
// ErrInvalidFill if qty exceeds the order's open quantity.
func (o *Order) Execute(qty, price uint64) error {
	if qty > o.OpenQuantity() {
		return ErrInvalidFill
	}
	o.ExecutedQuantity += qty
	o.LastExecutedPrice = price
	o.LastExecutedQuantity = qty
	return nil
}

func (o Order) String() string {
	return fmt.Sprintf(
		"Order{id=%d user=%d symbol=%d side=%s type=%v tif=%s price=%d qty=%d executed=%d}",
		o.OrderID, o.UserID, o.SymbolID, o.Side, o.Type, o.TimeInForce, o.Price, o.Quantity, o.ExecutedQuantity,
	)
}
