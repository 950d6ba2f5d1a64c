// Package server is the TCP front door: it accepts client connections,
// decodes internal/protocol frames, submits the resulting commands to a
// Market, and writes back internal/protocol reports for the events each
// connected user's orders produce. Adapted from the teacher's
// internal/net/server.go — same tomb-supervised worker pool, same
// per-connection read loop — generalized from a single flat Engine to the
// sharded Market and from owner-username routing to numeric user ids.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/market"
	"fenrir/internal/matching"
	"fenrir/internal/protocol"
)

const (
	maxRecvSize     = 4 * 1024
	defaultWorkers  = 10
	connReadTimeout = 30 * time.Second
)

var (
	ErrImproperConversion = errors.New("server: improper task type conversion")
)

// Server is the TCP listener dispatching decoded commands to a Market and
// routing published events back to the connection belonging to the
// user the event concerns.
type Server struct {
	address string
	mkt     *market.Market

	pool workerPool

	sessionsLock sync.Mutex
	sessions     map[uint64]net.Conn // userID -> connection
	orderOwners  map[uint64]uint64   // orderID -> userID, for events that don't carry UserID directly

	cancel context.CancelFunc
}

// New constructs a Server listening on address, submitting decoded
// commands to mkt.
func New(address string, mkt *market.Market) *Server {
	return &Server{
		address:     address,
		mkt:         mkt,
		pool:        newWorkerPool(defaultWorkers),
		sessions:    make(map[uint64]net.Conn),
		orderOwners: make(map[uint64]uint64),
	}
}

// Shutdown cancels the server's run context.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		log.Info().Msg("server: shutting down")
		s.cancel()
	}
}

// Run accepts connections until ctx is canceled or Shutdown is called.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		log.Error().Err(err).Str("address", s.address).Msg("server: unable to listen")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("server: error closing listener")
		}
	}()

	t.Go(func() error {
		s.pool.setup(t, s.handleConnection)
		return nil
	})

	log.Info().Str("address", s.address).Msg("server: listening")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					log.Error().Err(err).Msg("server: error accepting connection")
					continue
				}
			}
			log.Info().Str("remote", conn.RemoteAddr().String()).Msg("server: client connected")
			s.pool.addTask(conn)
		}
	}
}

// RouteEvent implements matching.EventSink so a Server can be composed
// directly into the fan-out alongside the production sink and metrics
// observer (see cmd/exchanged). It resolves which connected user(s) an
// event concerns and writes them a protocol report; events that concern
// no connected user (e.g. a symbol lifecycle event) are silently dropped.
func (s *Server) RouteEvent(e matching.Event) {
	if stringer, ok := e.(fmt.Stringer); ok {
		log.Debug().Stringer("event", stringer).Msg("server: routing event")
	}
	for _, userID := range s.owners(e) {
		s.writeReport(userID, e)
	}
	if ev, ok := e.(matching.OrderDeleted); ok {
		s.forgetOwner(ev.OrderID)
	}
	if ev, ok := e.(matching.OrderRejected); ok {
		s.forgetOwner(ev.OrderID)
	}
}

// owners resolves which user ids an event's report belongs to. Most
// event kinds only carry an OrderID; those fall back to the order-owner
// index populated when the order was first submitted.
func (s *Server) owners(e matching.Event) []uint64 {
	switch ev := e.(type) {
	case matching.Trade:
		return []uint64{ev.MakerUserID, ev.TakerUserID}
	case matching.OrderAdded:
		return []uint64{ev.Order.UserID}
	case matching.OrderUpdated:
		return []uint64{ev.Order.UserID}
	case matching.OrderExecuted:
		return s.ownerOf(ev.OrderID)
	case matching.OrderDeleted:
		return s.ownerOf(ev.OrderID)
	case matching.OrderRejected:
		return s.ownerOf(ev.OrderID)
	case matching.CancelRejected:
		return s.ownerOf(ev.OrderID)
	default:
		return nil
	}
}

func (s *Server) ownerOf(orderID uint64) []uint64 {
	s.sessionsLock.Lock()
	userID, ok := s.orderOwners[orderID]
	s.sessionsLock.Unlock()
	if !ok {
		return nil
	}
	return []uint64{userID}
}

func (s *Server) writeReport(userID uint64, e matching.Event) {
	s.sessionsLock.Lock()
	conn, ok := s.sessions[userID]
	s.sessionsLock.Unlock()
	if !ok {
		return
	}

	frame := protocol.EncodeEvent(e)
	if frame == nil {
		return
	}
	if _, err := conn.Write(frame); err != nil {
		log.Warn().Err(err).Uint64("userID", userID).Msg("server: failed to write report, dropping session")
		s.dropSession(userID)
	}
}

func (s *Server) registerSession(userID uint64, conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessions[userID] = conn
}

func (s *Server) dropSession(userID uint64) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.sessions, userID)
}

func (s *Server) recordOwner(orderID, userID uint64) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.orderOwners[orderID] = userID
}

func (s *Server) forgetOwner(orderID uint64) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.orderOwners, orderID)
}

// handleConnection reads one frame from a connection, dispatches it, and
// re-enqueues the connection for its next frame. A returned error is
// fatal to the owning worker, matching the teacher's contract.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	select {
	case <-t.Dying():
		conn.Close()
		return nil
	default:
	}

	if err := conn.SetReadDeadline(time.Now().Add(connReadTimeout)); err != nil {
		log.Error().Err(err).Msg("server: failed to set read deadline")
		conn.Close()
		return nil
	}

	buf := make([]byte, maxRecvSize)
	n, err := conn.Read(buf)
	if err != nil {
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("server: connection closed")
		conn.Close()
		return nil
	}

	if err := s.dispatchFrame(conn, buf[:n]); err != nil {
		log.Error().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("server: error handling frame")
		if _, werr := conn.Write(protocol.EncodeErrorReport(err.Error())); werr != nil {
			conn.Close()
			return nil
		}
	}

	s.pool.addTask(conn)
	return nil
}

func (s *Server) dispatchFrame(conn net.Conn, frame []byte) error {
	kind, msg, err := protocol.ParseMessage(frame)
	if err != nil {
		return err
	}

	switch kind {
	case protocol.NewOrder:
		m := msg.(protocol.NewOrderMessage)
		s.registerSession(m.UserID, conn)
		s.recordOwner(m.OrderID, m.UserID)
		s.mkt.Submit(m.SymbolID, m.Command())
	case protocol.CancelOrder:
		m := msg.(protocol.CancelOrderMessage)
		s.mkt.Submit(m.SymbolID, m.Command())
	case protocol.AddSymbol:
		m := msg.(protocol.SymbolMessage)
		s.mkt.AddSymbol(m.SymbolID)
	case protocol.RemoveSymbol:
		m := msg.(protocol.SymbolMessage)
		s.mkt.RemoveSymbol(m.SymbolID)
	default:
		return fmt.Errorf("server: unhandled message kind %d", kind)
	}
	return nil
}
