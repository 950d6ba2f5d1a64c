package matching

import "container/list"

// PriceLevel holds every resting order at one price, in FIFO arrival
// order. Orders are threaded through a doubly linked list rather than a
// plain slice so that Remove (used by Cancel and by a fully-filled maker
// leaving the level) is O(1) given the *list.Element cursor stored in the
// book's order index, instead of an O(n) slice splice.
type PriceLevel struct {
	Price  uint64
	orders *list.List
	Volume uint64
}

func newPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{Price: price, orders: list.New()}
}

// Append adds order to the tail of the level (latest arrival, lowest time
// priority) and returns the cursor the order index should retain for O(1)
// removal.
func (l *PriceLevel) Append(order *Order) *list.Element {
	l.Volume += order.OpenQuantity()
	return l.orders.PushBack(order)
}

// Remove drops the order at cursor e from the level in O(1).
func (l *PriceLevel) Remove(e *list.Element) {
	order := e.Value.(*Order)
	l.Volume -= order.OpenQuantity()
	l.orders.Remove(e)
}

// Head returns the order with earliest time priority at this price, or
// nil if the level is empty.
func (l *PriceLevel) Head() *Order {
	front := l.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*Order)
}

// HeadElement exposes the cursor of the head order, so the matching loop
// can remove it in O(1) once it is fully consumed.
func (l *PriceLevel) HeadElement() *list.Element {
	return l.orders.Front()
}

func (l *PriceLevel) Empty() bool {
	return l.orders.Len() == 0
}

func (l *PriceLevel) TotalVolume() uint64 {
	return l.Volume
}

// Len reports the number of resting orders in the level.
func (l *PriceLevel) Len() int {
	return l.orders.Len()
}

// recordFill reduces the level's volume to follow a partial fill on an
// order already resting in it (used by the matching loop, which mutates
// the order in place and then reconciles the level's aggregate).
func (l *PriceLevel) recordFill(qty uint64) {
	l.Volume -= qty
}
