// Package engine implements the shard worker described in spec.md §4.4:
// a goroutine that owns a set of OrderBooks keyed by symbol id, drains
// its own inbound command channel, and dispatches each command to the
// book it names. Concurrency and supervision follow the teacher's
// internal/worker.go WorkerPool idiom: gopkg.in/tomb.v2 instead of a bare
// sync.WaitGroup, one tomb per shard so a fatal error in one shard
// (spec.md §7 BookOverflow) cannot take down its siblings.
package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/matching"
	"fenrir/internal/metrics"
	"fenrir/internal/queue"
)

// defaultInboxCapacity approximates spec.md §5's "unbounded, memory is
// the only bound" with a generously buffered channel; Go has no native
// unbounded channel type.
const defaultInboxCapacity = 4096

// Shard owns a disjoint set of symbols' order books and processes
// commands for them strictly one at a time, in arrival order. No locking
// guards book state: a book is only ever touched by the goroutine running
// Shard.Run.
type Shard struct {
	id    int
	books map[uint32]*matching.OrderBook
	sink  matching.EventSink
	inbox queue.Receiver[matching.Command]
	t     *tomb.Tomb
}

// NewShard constructs a shard publishing to sink, and returns the Sender
// half of its inbound command queue for the router to hold onto.
func NewShard(id int, sink matching.EventSink) (*Shard, queue.Sender[matching.Command]) {
	sender, receiver := queue.New[matching.Command](defaultInboxCapacity)
	return &Shard{
		id:    id,
		books: make(map[uint32]*matching.OrderBook),
		sink:  sink,
		inbox: receiver,
	}, sender
}

// Start runs the shard's receive loop under its own tomb and returns it.
// A fatal error (ErrBookOverflow) kills this tomb only; Market.Stop joins
// on every shard's tomb independently.
func (s *Shard) Start() *tomb.Tomb {
	s.t = &tomb.Tomb{}
	s.t.Go(s.run)
	return s.t
}

func (s *Shard) run() error {
	log.Info().Int("shard", s.id).Msg("shard starting")
	for {
		select {
		case <-s.t.Dying():
			log.Info().Int("shard", s.id).Msg("shard dying")
			return nil
		case cmd, ok := <-s.inbox.C():
			if !ok {
				return nil
			}
			if _, closing := cmd.(matching.CloseQueue); closing {
				log.Info().Int("shard", s.id).Msg("shard closed by CloseQueue")
				return nil
			}
			err := s.dispatch(cmd)
			metrics.SetQueueDepth(strconv.Itoa(s.id), s.inbox.Len())
			if err != nil {
				log.Error().Int("shard", s.id).Err(err).Msg("fatal error, shard exiting")
				return err
			}
		}
	}
}

// dispatch is the exhaustive matcher spec.md §9 asks for: a type switch
// over the closed Command set, one case per variant, no default that
// silently drops an unrecognized command.
func (s *Shard) dispatch(cmd matching.Command) error {
	switch c := cmd.(type) {
	case matching.AddOrderBook:
		s.handleAddOrderBook(c)
		s.reportBookDepth(c.SymbolID)
	case matching.RemoveOrderBook:
		s.handleRemoveOrderBook(c)
		metrics.SetBookDepth(strconv.FormatUint(uint64(c.SymbolID), 10), 0, 0)
		return nil
	case matching.PlaceOrder:
		if err := s.handlePlaceOrder(c); err != nil {
			return err
		}
		s.reportBookDepth(c.SymbolID)
	case matching.CancelOrder:
		s.handleCancelOrder(c)
		s.reportBookDepth(c.SymbolID)
	default:
		log.Error().Int("shard", s.id).Str("command", fmt.Sprintf("%T", cmd)).Msg("unrecognized command variant")
	}
	return nil
}

// reportBookDepth updates the book-depth gauge for symbolID if this shard
// still owns a book for it.
func (s *Shard) reportBookDepth(symbolID uint32) {
	book, ok := s.books[symbolID]
	if !ok {
		return
	}
	bids, asks := book.Depth()
	metrics.SetBookDepth(strconv.FormatUint(uint64(symbolID), 10), bids, asks)
}

func (s *Shard) handleAddOrderBook(c matching.AddOrderBook) {
	if _, exists := s.books[c.SymbolID]; exists {
		// Idempotent: SPEC_FULL.md's resolved open question — silent no-op.
		return
	}
	s.books[c.SymbolID] = matching.NewOrderBook(c.SymbolID, s.sink)
	s.sink.Publish(matching.SymbolAdded{SymbolID: c.SymbolID})
}

func (s *Shard) handleRemoveOrderBook(c matching.RemoveOrderBook) {
	if _, exists := s.books[c.SymbolID]; !exists {
		return
	}
	delete(s.books, c.SymbolID)
	s.sink.Publish(matching.SymbolDeleted{SymbolID: c.SymbolID})
}

func (s *Shard) handlePlaceOrder(c matching.PlaceOrder) error {
	book, ok := s.books[c.SymbolID]
	if !ok {
		s.sink.Publish(matching.OrderRejected{OrderID: c.OrderID, Reason: matching.ReasonSymbolUnknown})
		return nil
	}

	order := matching.Order{
		OrderID:     c.OrderID,
		UserID:      c.UserID,
		SymbolID:    c.SymbolID,
		Side:        c.Side,
		Type:        c.Type,
		TimeInForce: c.TimeInForce,
		Price:       c.Price,
		Quantity:    c.Quantity,
	}
	log.Debug().Int("shard", s.id).Stringer("order", order).Msg("shard: admitting order")

	err := book.Place(order)
	if err == nil {
		return nil
	}
	if errors.Is(err, matching.ErrBookOverflow) {
		return err
	}
	// Any other error here is a caller precondition violation (e.g. a
	// symbol mismatch the router should never have allowed); log and
	// move on rather than taking the shard down for a routing bug.
	log.Error().Int("shard", s.id).Uint64("orderID", c.OrderID).Err(err).Msg("order rejected by book")
	return nil
}

func (s *Shard) handleCancelOrder(c matching.CancelOrder) {
	book, ok := s.books[c.SymbolID]
	if !ok {
		s.sink.Publish(matching.CancelRejected{OrderID: c.OrderID})
		return
	}
	book.Cancel(c.OrderID)
}
