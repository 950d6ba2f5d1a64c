package eventsink

import (
	"sync"

	"fenrir/internal/matching"
)

// Fanout publishes one event to every sink registered with it, in
// registration order. It exists so the sharded Market (which needs a
// sink at construction) and the TCP server (whose RouteEvent needs a
// live Market to submit commands to) can be wired up without either one
// needing the other's final form first: construct an empty Fanout, hand
// it to Market, build the Server against that Market, then Add the
// server's RouteEvent, metrics.Observe, and a feed.Hub.
type Fanout struct {
	mu    sync.Mutex
	sinks []matching.EventSink
}

// NewFanout constructs an empty Fanout.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers an additional sink. Safe to call concurrently with
// Publish, though in practice every Add happens during startup before
// any shard is running.
func (f *Fanout) Add(sink matching.EventSink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sink)
}

func (f *Fanout) Publish(e matching.Event) {
	f.mu.Lock()
	sinks := f.sinks
	f.mu.Unlock()
	for _, sink := range sinks {
		sink.Publish(e)
	}
}
