package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/eventsink"
)

func newTestBook() (*OrderBook, *eventsink.Recorder) {
	rec := eventsink.NewRecorder()
	return NewOrderBook(1, rec), rec
}

// Scenario 1 (empty book, place a resting limit bid).
func TestPlace_RestingLimitBid(t *testing.T) {
	book, rec := newTestBook()

	require.NoError(t, book.Place(LimitBid(1, 100, 1, 100, 10, GTC)))

	require.Len(t, rec.Events, 1)
	added, ok := rec.Events[0].(OrderAdded)
	require.True(t, ok)
	assert.Equal(t, uint64(1), added.Order.OrderID)

	bestBid, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, uint64(100), bestBid)

	order, ok := book.resting(1)
	require.True(t, ok)
	assert.Equal(t, uint64(10), order.OpenQuantity())
}

// Scenario 2: partial fill against a resting maker.
func TestPlace_PartialFillAgainstMaker(t *testing.T) {
	book, rec := newTestBook()
	require.NoError(t, book.Place(LimitBid(1, 100, 1, 100, 10, GTC)))
	rec.Reset()

	require.NoError(t, book.Place(LimitAsk(2, 200, 1, 100, 4, GTC)))

	require.Len(t, rec.Events, 5)
	trade, ok := rec.Events[0].(Trade)
	require.True(t, ok)
	assert.Equal(t, uint64(100), trade.Price)
	assert.Equal(t, uint64(4), trade.Quantity)
	assert.Equal(t, uint64(1), trade.MakerID)
	assert.Equal(t, uint64(2), trade.TakerID)

	execMaker, ok := rec.Events[1].(OrderExecuted)
	require.True(t, ok)
	assert.Equal(t, uint64(1), execMaker.OrderID)
	assert.Equal(t, uint64(6), execMaker.RemainingQty)

	execTaker, ok := rec.Events[2].(OrderExecuted)
	require.True(t, ok)
	assert.Equal(t, uint64(2), execTaker.OrderID)
	assert.Equal(t, uint64(0), execTaker.RemainingQty)

	deleted, ok := rec.Events[3].(OrderDeleted)
	require.True(t, ok)
	assert.Equal(t, uint64(2), deleted.OrderID)
	assert.Equal(t, ReasonFilled, deleted.Reason)

	updated, ok := rec.Events[4].(OrderUpdated)
	require.True(t, ok)
	assert.Equal(t, uint64(1), updated.Order.OrderID)
	assert.Equal(t, uint64(6), updated.Order.OpenQuantity())

	order, ok := book.resting(1)
	require.True(t, ok)
	assert.Equal(t, uint64(6), order.OpenQuantity())
}

// Scenario 3: FOK precheck fails and rejects atomically.
func TestPlace_FOKUnfilledRejectsAtomically(t *testing.T) {
	book, rec := newTestBook()
	require.NoError(t, book.Place(LimitAsk(3, 300, 1, 101, 5, GTC)))
	rec.Reset()

	require.NoError(t, book.Place(LimitBid(4, 400, 1, 101, 10, FOK)))

	require.Len(t, rec.Events, 1)
	rejected, ok := rec.Events[0].(OrderRejected)
	require.True(t, ok)
	assert.Equal(t, uint64(4), rejected.OrderID)
	assert.Equal(t, ReasonFillOrKillUnfilled, rejected.Reason)

	assert.Empty(t, rec.Trade, "a killed FOK must not touch the book")
	assert.Empty(t, rec.OrderExecuted, "a killed FOK must not touch the book")

	order, ok := book.resting(3)
	require.True(t, ok)
	assert.Equal(t, uint64(5), order.OpenQuantity())
}

// Scenario 4 (see DESIGN.md's note on the scenario's arithmetic): IOC
// sweeps two levels; 5 + 2 exactly fills the 7-lot taker, so it is
// deleted as Filled and maker 6 keeps 3 on the book.
func TestPlace_IOCSweepsMultipleLevelsUntilFilled(t *testing.T) {
	book, rec := newTestBook()
	require.NoError(t, book.Place(LimitAsk(5, 500, 1, 101, 5, GTC)))
	require.NoError(t, book.Place(LimitAsk(6, 600, 1, 102, 5, GTC)))
	rec.Reset()

	require.NoError(t, book.Place(LimitBid(7, 700, 1, 102, 7, IOC)))

	require.Len(t, rec.Trade, 2)
	assert.Equal(t, uint64(101), rec.Trade[0].Price)
	assert.Equal(t, uint64(5), rec.Trade[0].Quantity)
	assert.Equal(t, uint64(5), rec.Trade[0].MakerID)
	assert.Equal(t, uint64(102), rec.Trade[1].Price)
	assert.Equal(t, uint64(2), rec.Trade[1].Quantity)
	assert.Equal(t, uint64(6), rec.Trade[1].MakerID)

	require.GreaterOrEqual(t, len(rec.Events), 2)
	terminal, ok := rec.Events[len(rec.Events)-2].(OrderDeleted)
	require.True(t, ok, "second-to-last event should be the taker's terminal delete")
	assert.Equal(t, uint64(7), terminal.OrderID)
	assert.Equal(t, ReasonFilled, terminal.Reason)

	updated, ok := rec.Events[len(rec.Events)-1].(OrderUpdated)
	require.True(t, ok, "last event should be the reconciliation update for maker 6")
	assert.Equal(t, uint64(6), updated.Order.OrderID)

	_, askOk := book.resting(5)
	assert.False(t, askOk)
	order6, ok := book.resting(6)
	require.True(t, ok)
	assert.Equal(t, uint64(3), order6.OpenQuantity())
}

// Scenario 5: market order against an empty opposite side.
func TestPlace_MarketOnEmptyBookDeletesUnfilled(t *testing.T) {
	book, rec := newTestBook()

	require.NoError(t, book.Place(MarketBid(8, 800, 1, 1, GTC)))

	require.Len(t, rec.Events, 1)
	deleted, ok := rec.Events[0].(OrderDeleted)
	require.True(t, ok)
	assert.Equal(t, uint64(8), deleted.OrderID)
	assert.Equal(t, ReasonUnfilled, deleted.Reason)

	bids, asks := book.Depth()
	assert.Equal(t, 0, bids)
	assert.Equal(t, 0, asks)
}

// Scenario 6: canceling a resting order restores prior state.
func TestCancel_RestingOrder(t *testing.T) {
	book, rec := newTestBook()
	require.NoError(t, book.Place(LimitBid(1, 100, 1, 100, 10, GTC)))
	rec.Reset()

	book.Cancel(1)

	require.Len(t, rec.Events, 1)
	deleted, ok := rec.Events[0].(OrderDeleted)
	require.True(t, ok)
	assert.Equal(t, uint64(1), deleted.OrderID)
	assert.Equal(t, ReasonCanceled, deleted.Reason)

	_, ok = book.resting(1)
	assert.False(t, ok)
	_, ok = book.BestBid()
	assert.False(t, ok)
}

func TestCancel_NotFoundRejects(t *testing.T) {
	book, rec := newTestBook()

	book.Cancel(999)

	require.Len(t, rec.Events, 1)
	assert.Len(t, rec.CancelRejected, 1)
}

func TestPlace_DuplicateIDRejected(t *testing.T) {
	book, rec := newTestBook()
	require.NoError(t, book.Place(LimitBid(1, 100, 1, 100, 10, GTC)))
	rec.Reset()

	require.NoError(t, book.Place(LimitBid(1, 100, 1, 99, 5, GTC)))

	require.Len(t, rec.Events, 1)
	rejected, ok := rec.Events[0].(OrderRejected)
	require.True(t, ok)
	assert.Equal(t, ReasonDuplicateID, rejected.Reason)

	// Book unchanged: still resting at 100, qty 10.
	order, ok := book.resting(1)
	require.True(t, ok)
	assert.Equal(t, uint64(100), order.Price)
	assert.Equal(t, uint64(10), order.OpenQuantity())
}

func TestPlace_ZeroQuantityRejected(t *testing.T) {
	book, rec := newTestBook()

	require.NoError(t, book.Place(LimitBid(1, 100, 1, 100, 0, GTC)))

	require.Len(t, rec.Events, 1)
	rejected, ok := rec.Events[0].(OrderRejected)
	require.True(t, ok)
	assert.Equal(t, ReasonZeroQuantity, rejected.Reason)
}

// FIFO within a level: two orders at the same price, earlier admitted
// consumes first.
func TestMatch_FIFOWithinLevel(t *testing.T) {
	book, rec := newTestBook()
	require.NoError(t, book.Place(LimitBid(1, 100, 1, 100, 5, GTC)))
	require.NoError(t, book.Place(LimitBid(2, 200, 1, 100, 5, GTC)))
	rec.Reset()

	require.NoError(t, book.Place(LimitAsk(3, 300, 1, 100, 5, GTC)))

	require.Len(t, rec.Trade, 1)
	assert.Equal(t, uint64(1), rec.Trade[0].MakerID, "earlier order at the same price must match first")

	order2, ok := book.resting(2)
	require.True(t, ok)
	assert.Equal(t, uint64(5), order2.OpenQuantity())
}

// Crossed-book invariant: best bid never exceeds best ask once a command
// finishes processing.
func TestInvariant_BooksNeverStayCrossed(t *testing.T) {
	book, _ := newTestBook()
	require.NoError(t, book.Place(LimitAsk(1, 1, 1, 100, 10, GTC)))
	require.NoError(t, book.Place(LimitBid(2, 2, 1, 105, 4, GTC)))

	bestBid, bidOk := book.BestBid()
	bestAsk, askOk := book.BestAsk()
	if bidOk && askOk {
		assert.Less(t, bestBid, bestAsk)
	}
}

func TestMatch_LargeVolumesFullyMatch(t *testing.T) {
	book, _ := newTestBook()
	require.NoError(t, book.Place(LimitBid(1, 1, 1, 100, 1<<40, GTC)))
	require.NoError(t, book.Place(LimitAsk(2, 2, 1, 100, 1<<40, GTC)))
	_, ok := book.resting(1)
	assert.False(t, ok)
}
