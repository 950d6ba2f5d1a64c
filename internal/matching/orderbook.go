package matching

import (
	"container/list"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
)

// PriceLevels is a B-tree of PriceLevel keyed by price, generalized from
// the teacher's internal/engine/orderbook.go (which keyed on float64
// ticks) to spec.md §3's integer tick prices.
type PriceLevels = btree.BTreeG[*PriceLevel]

type indexEntry struct {
	side Side
	book *PriceLevels
	elem *list.Element
}

// OrderBook is the per-symbol matching state: bid and ask sides indexed
// by price, an order index for O(log n) cancellation, and an event sink.
// It is single-owner — only the shard worker holding it may call its
// methods (spec.md §3 Ownership).
type OrderBook struct {
	SymbolID uint32

	bids *PriceLevels // ordered descending: best bid first
	asks *PriceLevels // ordered ascending: best ask first

	index map[uint64]*indexEntry

	sink EventSink

	// now is swappable so tests can pin admission timestamps; defaults to
	// time.Now.
	now func() time.Time
}

// NewOrderBook constructs an empty book for symbolID, publishing events to
// sink.
func NewOrderBook(symbolID uint32, sink EventSink) *OrderBook {
	return &OrderBook{
		SymbolID: symbolID,
		bids: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price > b.Price // descending: best bid is the max
		}),
		asks: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price < b.Price // ascending: best ask is the min
		}),
		index: make(map[uint64]*indexEntry),
		sink:  sink,
		now:   time.Now,
	}
}

func (b *OrderBook) bestBidPrice() (uint64, bool) {
	lvl, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return lvl.Price, true
}

func (b *OrderBook) bestAskPrice() (uint64, bool) {
	lvl, ok := b.asks.Min() // ascending tree: Min() is the lowest ask
	if !ok {
		return 0, false
	}
	return lvl.Price, true
}

// opposite returns the side an incoming order of the given side matches
// against: Bid matches Ask, Ask matches Bid.
func (b *OrderBook) opposite(side Side) *PriceLevels {
	if side == Bid {
		return b.asks
	}
	return b.bids
}

func (b *OrderBook) own(side Side) *PriceLevels {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

// priceSatisfies reports whether a resting order at opposingPrice may
// match against the incoming order, per spec.md §4.3 step 3's crossing
// condition. Market orders have no price barrier.
func priceSatisfies(order *Order, opposingPrice uint64) bool {
	if order.IsMarket() {
		return true
	}
	if order.IsBid() {
		return opposingPrice <= order.Price
	}
	return opposingPrice >= order.Price
}

// Place is the single entry point for admitting a new order. Preconditions:
// order.SymbolID must equal the book's symbol (a caller bug, reported as a
// Go error — the engine never calls Place on the wrong book). All other
// inadmissible states (duplicate id, zero quantity, invalid price, FOK
// unfilled) are reported as events, not errors: Place returns nil once the
// order has been fully accounted for, one way or another.
func (b *OrderBook) Place(order Order) error {
	if order.SymbolID != b.SymbolID {
		return ErrSymbolMismatch
	}
	if order.Quantity == 0 {
		b.sink.Publish(OrderRejected{OrderID: order.OrderID, Reason: ReasonZeroQuantity})
		return nil
	}
	if order.IsLimit() && order.Price == 0 {
		b.sink.Publish(OrderRejected{OrderID: order.OrderID, Reason: ReasonInvalidPrice})
		return nil
	}
	if _, exists := b.index[order.OrderID]; exists {
		b.sink.Publish(OrderRejected{OrderID: order.OrderID, Reason: ReasonDuplicateID})
		return nil
	}

	order.AdmittedAt = b.now()

	if order.IsFOK() && !b.fokFillable(&order) {
		b.sink.Publish(OrderRejected{OrderID: order.OrderID, Reason: ReasonFillOrKillUnfilled})
		return nil
	}

	touchedMakers, err := b.match(&order)
	if err != nil {
		return err
	}

	if order.OpenQuantity() == 0 {
		b.sink.Publish(OrderDeleted{OrderID: order.OrderID, Reason: ReasonFilled})
	} else if order.IsMarket() || order.IsIOC() {
		reason := ReasonUnfilled
		if order.ExecutedQuantity > 0 {
			reason = ReasonPartiallyUnfilled
		}
		b.sink.Publish(OrderDeleted{OrderID: order.OrderID, Reason: reason})
	} else {
		b.rest(&order)
		b.sink.Publish(OrderAdded{Order: order})
	}

	// Reconciliation pass: makers touched by this command that survived
	// with a reduced open quantity get one OrderUpdated each, emitted
	// after the taker's own terminal event (matches spec.md §8 scenario 2's
	// documented ordering).
	for _, maker := range touchedMakers {
		b.sink.Publish(OrderUpdated{Order: *maker})
	}

	return nil
}

// fokFillable walks the opposite side from best price, summing reachable
// volume at prices satisfying order's price constraint, per spec.md §4.3
// step 2. It does not mutate the book.
func (b *OrderBook) fokFillable(order *Order) bool {
	var available uint64
	var iterErr error
	// Scan walks the tree in its own sort order — best price first on
	// both sides — so this already visits asks ascending / bids
	// descending without needing a pivot.
	b.opposite(order.Side).Scan(func(lvl *PriceLevel) bool {
		if !priceSatisfies(order, lvl.Price) {
			return false
		}
		next := available + lvl.TotalVolume()
		if next < available {
			iterErr = ErrBookOverflow
			return false
		}
		available = next
		return available < order.Quantity
	})
	if iterErr != nil {
		return false
	}
	return available >= order.Quantity
}

// match runs the price-time-priority matching loop described in
// spec.md §4.3 step 3. It returns the resting makers that were partially
// filled and remain on the book, in the order they were touched, so Place
// can emit their OrderUpdated events after the taker's terminal event.
func (b *OrderBook) match(order *Order) ([]*Order, error) {
	var touched []*Order
	opposite := b.opposite(order.Side)

	for order.OpenQuantity() > 0 {
		level, ok := opposite.Min()
		if !ok || !priceSatisfies(order, level.Price) {
			break
		}

		elem := level.HeadElement()
		resting := elem.Value.(*Order)

		fillQty := min(order.OpenQuantity(), resting.OpenQuantity())
		fillPrice := level.Price

		if level.Volume < fillQty {
			return touched, ErrBookOverflow
		}

		if err := order.Execute(fillQty, fillPrice); err != nil {
			return touched, err
		}
		if err := resting.Execute(fillQty, fillPrice); err != nil {
			return touched, err
		}
		level.recordFill(fillQty)

		b.sink.Publish(Trade{
			TradeID:     uuid.New(),
			SymbolID:    b.SymbolID,
			Price:       fillPrice,
			Quantity:    fillQty,
			MakerID:     resting.OrderID,
			TakerID:     order.OrderID,
			MakerUserID: resting.UserID,
			TakerUserID: order.UserID,
		})
		b.sink.Publish(OrderExecuted{
			OrderID:          resting.OrderID,
			ExecutedPrice:    fillPrice,
			ExecutedQuantity: fillQty,
			RemainingQty:     resting.OpenQuantity(),
		})
		b.sink.Publish(OrderExecuted{
			OrderID:          order.OrderID,
			ExecutedPrice:    fillPrice,
			ExecutedQuantity: fillQty,
			RemainingQty:     order.OpenQuantity(),
		})

		if resting.OpenQuantity() == 0 {
			level.Remove(elem)
			delete(b.index, resting.OrderID)
			b.sink.Publish(OrderDeleted{OrderID: resting.OrderID, Reason: ReasonFilled})
			if level.Empty() {
				opposite.Delete(level)
			}
		} else {
			touched = append(touched, resting)
		}
	}

	return touched, nil
}

// rest inserts order into its side's level at order.Price, creating the
// level if absent, and records it in the order index.
func (b *OrderBook) rest(order *Order) {
	levels := b.own(order.Side)

	level, ok := levels.Get(&PriceLevel{Price: order.Price})
	if !ok {
		level = newPriceLevel(order.Price)
		levels.Set(level)
	}

	// order escapes to the heap: the level and index both need a stable
	// address across further partial fills.
	resting := *order
	elem := level.Append(&resting)

	b.index[order.OrderID] = &indexEntry{side: order.Side, book: levels, elem: elem}
}

// Cancel removes a resting order from the book. Emits CancelRejected if
// orderID is not currently resting.
func (b *OrderBook) Cancel(orderID uint64) {
	entry, ok := b.index[orderID]
	if !ok {
		b.sink.Publish(CancelRejected{OrderID: orderID})
		return
	}

	level, ok := entry.book.Get(&PriceLevel{Price: entry.elem.Value.(*Order).Price})
	if !ok {
		// Invariant violation: the index pointed at a level that no longer
		// exists. Treat as not-found rather than panicking.
		delete(b.index, orderID)
		b.sink.Publish(CancelRejected{OrderID: orderID})
		return
	}

	level.Remove(entry.elem)
	delete(b.index, orderID)
	if level.Empty() {
		entry.book.Delete(level)
	}

	b.sink.Publish(OrderDeleted{OrderID: orderID, Reason: ReasonCanceled})
}

// BestBid returns the best resting bid price and whether one exists.
func (b *OrderBook) BestBid() (uint64, bool) { return b.bestBidPrice() }

// BestAsk returns the best resting ask price and whether one exists.
func (b *OrderBook) BestAsk() (uint64, bool) { return b.bestAskPrice() }

// Depth reports the number of resting orders on each side, for metrics
// and tests.
func (b *OrderBook) Depth() (bids, asks int) {
	b.bids.Scan(func(l *PriceLevel) bool {
		bids += l.Len()
		return true
	})
	b.asks.Scan(func(l *PriceLevel) bool {
		asks += l.Len()
		return true
	})
	return bids, asks
}

// TotalVolume sums open quantity across both sides; exposed for the
// universal-invariant property tests in spec.md §8.
func (b *OrderBook) TotalVolume() (bidVolume, askVolume uint64) {
	b.bids.Scan(func(l *PriceLevel) bool {
		bidVolume += l.TotalVolume()
		return true
	})
	b.asks.Scan(func(l *PriceLevel) bool {
		askVolume += l.TotalVolume()
		return true
	})
	return bidVolume, askVolume
}

// resting returns the live *Order pointer for orderID if it is currently
// on the book. Exposed for tests asserting fill state.
func (b *OrderBook) resting(orderID uint64) (*Order, bool) {
	entry, ok := b.index[orderID]
	if !ok {
		return nil, false
	}
	return entry.elem.Value.(*Order), true
}
