package push

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"marketpulse/internal/ports"
)

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 16
)

// envelope is the wire frame for one pushed event.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan envelope
}

// Hub upgrades browser connections and fans events out to them. Pushes are
// fire-and-forget: a subscriber that cannot keep up is dropped.
type Hub struct {
	upgrader websocket.Upgrader
	events   ports.SubscriberEvents
	log      *slog.Logger

	nextID atomic.Int64

	mu      sync.Mutex
	clients map[string]*client
}

var _ ports.Publisher = (*Hub)(nil)

// NewHub builds a hub notifying the given lifecycle listener.
func NewHub(events ports.SubscriberEvents, log *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		events:  events,
		log:     log,
		clients: map[string]*client{},
	}
}

// ServeHTTP upgrades the connection and registers it as a subscriber.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.log != nil {
			h.log.Warn("websocket upgrade failed", "error", err)
		}
		return
	}

	id := fmt.Sprintf("sub-%d", h.nextID.Add(1))
	cl := &client{conn: conn, send: make(chan envelope, sendBufferSize)}

	h.mu.Lock()
	h.clients[id] = cl
	h.mu.Unlock()

	if h.events != nil {
		h.events.Subscribed(id)
	}

	go h.writePump(id, cl)
	go h.readPump(id, cl)
}

// Publish queues an event for one subscriber. Unknown subscribers and full
// buffers drop the event silently.
func (h *Hub) Publish(subscriberID, event string, payload any) {
	// The send stays under the lock so drop cannot close the channel
	// between the lookup and the send.
	h.mu.Lock()
	defer h.mu.Unlock()

	cl, ok := h.clients[subscriberID]
	if !ok {
		return
	}

	select {
	case cl.send <- envelope{Event: event, Payload: payload}:
	default:
		if h.log != nil {
			h.log.Warn("dropping event for slow subscriber", "id", subscriberID, "event", event)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.drop(id)
	}
}

func (h *Hub) writePump(id string, cl *client) {
	for env := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteJSON(env); err != nil {
			h.drop(id)
			return
		}
	}
}

// readPump exists to observe the close handshake; inbound frames are
// discarded.
func (h *Hub) readPump(id string, cl *client) {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			h.drop(id)
			return
		}
	}
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	cl, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(cl.send)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	_ = cl.conn.Close()

	if h.events != nil {
		h.events.Unsubscribed(id)
	}
}
