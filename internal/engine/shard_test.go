package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/eventsink"
	"fenrir/internal/matching"
)

func recvEvent(t *testing.T, ch chan matching.Event) matching.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestShard_AddOrderBookThenPlaceOrder(t *testing.T) {
	events := make(chan matching.Event, 64)
	sink := eventsink.NewChan(events)
	shard, sender := NewShard(0, sink)
	tomb := shard.Start()
	defer func() {
		sender.Send(matching.CloseQueue{})
		tomb.Wait()
	}()

	sender.Send(matching.AddOrderBook{SymbolID: 1})
	added := recvEvent(t, events)
	_, ok := added.(matching.SymbolAdded)
	require.True(t, ok)

	sender.Send(matching.PlaceOrder{
		OrderID: 1, UserID: 1, SymbolID: 1,
		Side: matching.Bid, Type: matching.Limit, TimeInForce: matching.GTC,
		Price: 100, Quantity: 5,
	})
	resting := recvEvent(t, events)
	orderAdded, ok := resting.(matching.OrderAdded)
	require.True(t, ok)
	assert.Equal(t, uint64(1), orderAdded.Order.OrderID)
}

func TestShard_PlaceOrderOnUnknownSymbolRejects(t *testing.T) {
	events := make(chan matching.Event, 64)
	sink := eventsink.NewChan(events)
	shard, sender := NewShard(0, sink)
	tomb := shard.Start()
	defer func() {
		sender.Send(matching.CloseQueue{})
		tomb.Wait()
	}()

	sender.Send(matching.PlaceOrder{OrderID: 1, SymbolID: 99, Quantity: 1, Side: matching.Bid, Price: 1})
	rejected := recvEvent(t, events)
	_, ok := rejected.(matching.OrderRejected)
	assert.True(t, ok)
}

func TestShard_CloseQueueStopsRunLoop(t *testing.T) {
	events := make(chan matching.Event, 64)
	sink := eventsink.NewChan(events)
	shard, sender := NewShard(0, sink)
	tomb := shard.Start()

	sender.Send(matching.CloseQueue{})

	select {
	case <-tomb.Dead():
	case <-time.After(time.Second):
		t.Fatal("shard did not stop after CloseQueue")
	}
	assert.NoError(t, tomb.Err())
}

func TestShard_RemoveOrderBookEmitsSymbolDeleted(t *testing.T) {
	events := make(chan matching.Event, 64)
	sink := eventsink.NewChan(events)
	shard, sender := NewShard(0, sink)
	tomb := shard.Start()
	defer func() {
		sender.Send(matching.CloseQueue{})
		tomb.Wait()
	}()

	sender.Send(matching.AddOrderBook{SymbolID: 1})
	recvEvent(t, events) // SymbolAdded

	sender.Send(matching.RemoveOrderBook{SymbolID: 1})
	deleted := recvEvent(t, events)
	_, ok := deleted.(matching.SymbolDeleted)
	assert.True(t, ok)
}
