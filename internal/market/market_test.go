package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/eventsink"
	"fenrir/internal/matching"
)

func newTestMarket(shards int) (*Market, chan matching.Event) {
	events := make(chan matching.Event, 256)
	sink := eventsink.NewChan(events)
	m := New(shards, sink)
	m.Start()
	return m, events
}

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

func TestMarket_ShardOfIsDeterministic(t *testing.T) {
	m, _ := newTestMarket(4)
	defer m.Stop()

	assert.Equal(t, m.shardOf(5), m.shardOf(9), "symbols congruent mod shard count land on the same shard")
	assert.Equal(t, 1, m.shardOf(5))
}

func TestMarket_AddSymbolThenSubmitRoutesToOwningShard(t *testing.T) {
	m, events := newTestMarket(2)
	defer m.Stop()

	m.AddSymbol(7)
	added := recvEvent(t, events)
	_, ok := added.(matching.SymbolAdded)
	require.True(t, ok)

	m.Submit(7, matching.PlaceOrder{
		OrderID: 1, SymbolID: 7, Side: matching.Bid, Type: matching.Limit,
		TimeInForce: matching.GTC, Price: 10, Quantity: 1,
	})
	orderAdded := recvEvent(t, events)
	_, ok = orderAdded.(matching.OrderAdded)
	assert.True(t, ok)
}

func TestMarket_StopWaitsForAllShards(t *testing.T) {
	m, _ := newTestMarket(3)
	assert.Equal(t, 3, m.ShardCount())
	m.Stop()
}

func TestMarket_SingleShardFloorsAtOne(t *testing.T) {
	m := New(0, matching.SinkFunc(func(matching.Event) {}))
	assert.Equal(t, 1, m.ShardCount())
}
