package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_ExecutePartial(t *testing.T) {
	o := LimitBid(1, 1, 1, 100, 10, GTC)

	require.NoError(t, o.Execute(4, 100))
	assert.Equal(t, uint64(4), o.ExecutedQuantity)
	assert.Equal(t, uint64(6), o.OpenQuantity())
	assert.Equal(t, uint64(100), o.LastExecutedPrice)
	assert.Equal(t, uint64(4), o.LastExecutedQuantity)
}

func TestOrder_ExecuteExceedsOpenQuantityFails(t *testing.T) {
	o := LimitBid(1, 1, 1, 100, 10, GTC)

	err := o.Execute(11, 100)
	assert.ErrorIs(t, err, ErrInvalidFill)
	assert.Equal(t, uint64(0), o.ExecutedQuantity)
}

func TestOrder_Predicates(t *testing.T) {
	bid := LimitBid(1, 1, 1, 100, 10, IOC)
	assert.True(t, bid.IsLimit())
	assert.False(t, bid.IsMarket())
	assert.True(t, bid.IsBid())
	assert.False(t, bid.IsAsk())
	assert.True(t, bid.IsIOC())
	assert.False(t, bid.IsFOK())

	mktAsk := MarketAsk(2, 1, 1, 5, FOK)
	assert.True(t, mktAsk.IsMarket())
	assert.True(t, mktAsk.IsAsk())
	assert.True(t, mktAsk.IsFOK())
	assert.Equal(t, uint64(0), mktAsk.Price)
}

func TestPriceLevel_AppendRemoveVolume(t *testing.T) {
	level := newPriceLevel(100)
	a := LimitBid(1, 1, 1, 100, 5, GTC)
	b := LimitBid(2, 1, 1, 100, 3, GTC)

	ea := level.Append(&a)
	level.Append(&b)
	assert.Equal(t, uint64(8), level.TotalVolume())
	assert.Equal(t, 2, level.Len())
	assert.Equal(t, uint64(1), level.Head().OrderID, "FIFO: first admitted is head")

	level.Remove(ea)
	assert.Equal(t, uint64(3), level.TotalVolume())
	assert.Equal(t, uint64(2), level.Head().OrderID)
	assert.False(t, level.Empty())
}

func TestPriceLevel_EmptyAfterDrainingAllOrders(t *testing.T) {
	level := newPriceLevel(100)
	a := LimitBid(1, 1, 1, 100, 5, GTC)
	e := level.Append(&a)

	level.Remove(e)
	assert.True(t, level.Empty())
	assert.Equal(t, uint64(0), level.TotalVolume())
	assert.Nil(t, level.Head())
}
