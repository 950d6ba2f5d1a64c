// Package market implements the router described in spec.md §4.5: it owns
// a fixed number of shards, hashes each command's symbol to the shard
// that owns it, and manages shard lifecycle.
package market

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/engine"
	"fenrir/internal/matching"
	"fenrir/internal/queue"
)

// Market routes commands to one of N shard workers by symbol id and
// fans every shard's events into one shared sink.
type Market struct {
	shards  []*engine.Shard
	senders []queue.Sender[matching.Command]
	tombs   []*tomb.Tomb
}

// New constructs a Market with shardCount shards, all publishing events
// to sink. Call Start before submitting commands.
func New(shardCount int, sink matching.EventSink) *Market {
	if shardCount < 1 {
		shardCount = 1
	}
	m := &Market{
		shards:  make([]*engine.Shard, shardCount),
		senders: make([]queue.Sender[matching.Command], shardCount),
	}
	for i := 0; i < shardCount; i++ {
		shard, sender := engine.NewShard(i, sink)
		m.shards[i] = shard
		m.senders[i] = sender
	}
	return m
}

// Start spawns one worker goroutine per shard.
func (m *Market) Start() {
	m.tombs = make([]*tomb.Tomb, len(m.shards))
	for i, shard := range m.shards {
		m.tombs[i] = shard.Start()
	}
	log.Info().Int("shards", len(m.shards)).Msg("market started")
}

// shardOf implements spec.md §4.5's shard_of(symbol_id) = symbol_id mod N.
func (m *Market) shardOf(symbolID uint32) int {
	return int(symbolID) % len(m.shards)
}

// Submit routes cmd to the shard owning its symbol. cmd must be one of
// AddOrderBook, RemoveOrderBook, PlaceOrder, or CancelOrder — CloseQueue is
// sent internally by Stop, never by a caller of Submit.
func (m *Market) Submit(symbolID uint32, cmd matching.Command) {
	m.senders[m.shardOf(symbolID)].Send(cmd)
}

// AddSymbol routes an AddOrderBook command to the owning shard.
func (m *Market) AddSymbol(symbolID uint32) {
	m.Submit(symbolID, matching.AddOrderBook{SymbolID: symbolID})
}

// RemoveSymbol routes a RemoveOrderBook command to the owning shard.
func (m *Market) RemoveSymbol(symbolID uint32) {
	m.Submit(symbolID, matching.RemoveOrderBook{SymbolID: symbolID})
}

// Stop sends CloseQueue to every shard and waits for each to exit. Shards
// that already died fatally (BookOverflow) return their stored error;
// Stop logs but does not propagate it; per spec.md §7 a fatal error
// terminates only its shard; the supervisor — here, Stop's caller — has
// already chosen to shut down everything.
func (m *Market) Stop() {
	for _, sender := range m.senders {
		sender.Send(matching.CloseQueue{})
	}
	for i, t := range m.tombs {
		if err := t.Wait(); err != nil {
			log.Error().Int("shard", i).Err(err).Msg("shard exited with error")
		}
	}
	log.Info().Msg("market stopped")
}

// ShardCount reports how many shards this market was constructed with.
func (m *Market) ShardCount() int {
	return len(m.shards)
}
