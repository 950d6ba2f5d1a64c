// Package feed rebroadcasts Trade, OrderAdded, and OrderDeleted events
// to connected viewers over github.com/gorilla/websocket. It sits
// strictly downstream of the matching core's event sink — spec.md §1
// names the event consumer out of scope for the core itself — and never
// touches book state directly.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"fenrir/internal/matching"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Market data is public; any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// message is the JSON shape pushed to every connected viewer. Only the
// three event kinds a market-data viewer cares about are forwarded;
// OrderRejected, CancelRejected, and SymbolAdded/Deleted stay internal.
type message struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Hub fans incoming events out to every currently connected websocket
// client. Publish is safe to call concurrently with clients connecting
// and disconnecting.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Publish implements matching.EventSink so a Hub can be handed directly
// to an event fan-out alongside the production sink, without the core
// knowing anything about websockets.
func (h *Hub) Publish(e matching.Event) {
	msg, ok := toMessage(e)
	if !ok {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("feed: failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn().Err(err).Msg("feed: dropping unresponsive viewer")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func toMessage(e matching.Event) (message, bool) {
	switch e.(type) {
	case matching.Trade:
		return message{Kind: "trade", Data: e}, true
	case matching.OrderAdded:
		return message{Kind: "order_added", Data: e}, true
	case matching.OrderDeleted:
		return message{Kind: "order_deleted", Data: e}, true
	default:
		return message{}, false
	}
}

// ServeHTTP upgrades the connection and registers it as a viewer until it
// disconnects or a write fails.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("feed: upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Viewers are write-only; drain and discard any inbound frame so the
	// connection's read deadline and pong handling stay serviced.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
