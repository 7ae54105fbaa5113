// Package live pushes committed repository changes to websocket clients so
// views can re-read the snapshot they depend on.
package live

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"idledger/internal/log"
	"idledger/internal/repository"
)

const (
	TypeConnected = "connected"
	TypeChange    = "change"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// Event is one message on the feed.
type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection,omitempty"`
	Op         string    `json:"op,omitempty"`
	IDs        []string  `json:"ids,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan Event
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans repository changes out to every connected client. A client whose
// buffer is full is dropped rather than slowing down the mutation path.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *log.Logger
	now      func() time.Time

	unsubscribe func()
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Discard()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.WithComponent(log.ComponentLive),
		now:    time.Now,
	}
}

// Attach subscribes to repo. Close detaches.
func (h *Hub) Attach(repo *repository.Repository) {
	h.unsubscribe = repo.Subscribe(h.Notify)
}

// Notify is the repository listener.
func (h *Hub) Notify(ctx context.Context, change repository.Change) {
	h.broadcast(Event{
		Type:       TypeChange,
		Collection: change.Collection.String(),
		Op:         string(change.Op),
		IDs:        change.IDs,
		Timestamp:  h.now().UTC(),
	})
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			delete(h.clients, c)
			c.close()
			h.logger.Warn("Dropping slow live client", "remote", c.conn.RemoteAddr().String())
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", log.FieldError, err)
		return
	}

	c := &client{conn: conn, send: make(chan Event, sendBuffer)}
	c.send <- Event{Type: TypeConnected, Timestamp: h.now().UTC()}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.DebugContext(r.Context(), "Live client connected", log.FieldCount, h.Count())

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages; it exists to notice disconnects and
// answer pings.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Close detaches from the repository and disconnects every client.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}
