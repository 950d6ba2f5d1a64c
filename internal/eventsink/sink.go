// Package eventsink provides EventSink implementations for the matching
// core: a channel-backed sink used in production, and a recording double
// used by tests. This collapses the teacher's per-kind virtual handler
// dispatch (src/event_handler.cpp's chain of .handle<...>() calls) into
// one function per spec.md §9.
package eventsink

import "fenrir/internal/matching"

// Chan publishes events onto a Go channel. A shard worker can hand one
// to every OrderBook it owns — multiple books in one shard, or even
// multiple shards, may share a single Chan to merge onto one outbound
// stream, since sending on a channel is already safe for concurrent use.
type Chan struct {
	C chan<- matching.Event
}

// NewChan wraps ch as an EventSink.
func NewChan(ch chan<- matching.Event) Chan {
	return Chan{C: ch}
}

func (s Chan) Publish(e matching.Event) {
	s.C <- e
}

// Recorder is a test double that appends every published event, in
// arrival order, to a single slice. It also buckets events by concrete
// type for assertions that only care about one kind, mirroring
// original_source's test/market/debug_event_handler.h, which records
// into per-kind vectors instead of printing.
type Recorder struct {
	Events []matching.Event

	SymbolAdded    []matching.SymbolAdded
	SymbolDeleted  []matching.SymbolDeleted
	OrderAdded     []matching.OrderAdded
	OrderUpdated   []matching.OrderUpdated
	OrderExecuted  []matching.OrderExecuted
	OrderDeleted   []matching.OrderDeleted
	OrderRejected  []matching.OrderRejected
	CancelRejected []matching.CancelRejected
	Trade          []matching.Trade
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(e matching.Event) {
	r.Events = append(r.Events, e)
	switch v := e.(type) {
	case matching.SymbolAdded:
		r.SymbolAdded = append(r.SymbolAdded, v)
	case matching.SymbolDeleted:
		r.SymbolDeleted = append(r.SymbolDeleted, v)
	case matching.OrderAdded:
		r.OrderAdded = append(r.OrderAdded, v)
	case matching.OrderUpdated:
		r.OrderUpdated = append(r.OrderUpdated, v)
	case matching.OrderExecuted:
		r.OrderExecuted = append(r.OrderExecuted, v)
	case matching.OrderDeleted:
		r.OrderDeleted = append(r.OrderDeleted, v)
	case matching.OrderRejected:
		r.OrderRejected = append(r.OrderRejected, v)
	case matching.CancelRejected:
		r.CancelRejected = append(r.CancelRejected, v)
	case matching.Trade:
		r.Trade = append(r.Trade, v)
	}
}

// Reset clears all recorded events, keeping the same backing sink alive
// across scenarios in a single test.
func (r *Recorder) Reset() {
	*r = *NewRecorder()
}
