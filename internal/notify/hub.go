// Package notify fans lifecycle change notifications out to connected
// WebSocket clients. Delivery is best effort and lives only as long as the
// process: nothing is queued for clients that are not connected.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBuffer   = 64
	broadcastQueue = 256
)

// Message is the frame sent to every client.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	id     uuid.UUID
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub owns the set of connected clients. A single goroutine (Run) mutates
// it; Publish and ServeWS only talk to that goroutine through channels.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan Message
	done       chan struct{}

	mu    sync.RWMutex
	count int

	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHub(logger zerolog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Message, broadcastQueue),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: logger.With().Str("component", "hub").Logger(),
	}
}

// Run serves register, unregister and broadcast requests until ctx is
// cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.log.Info().Msg("hub stopped")
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			h.log.Debug().Stringer("client", c.id).Str("user", c.userID).Msg("client connected")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.Debug().Stringer("client", c.id).Msg("client disconnected")
			}
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Wait blocks until Run has returned.
func (h *Hub) Wait() {
	<-h.done
}

// Publish queues a notification for every connected client. It never
// blocks: when the queue is full the notification is dropped.
func (h *Hub) Publish(event string, payload any) {
	select {
	case h.broadcast <- Message{Event: event, Data: payload}:
	default:
		h.log.Warn().Str("event", event).Msg("broadcast queue full, notification dropped")
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// ServeWS upgrades the request and streams notifications to it until the
// connection closes. userID is only used for logging.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		id:     uuid.New(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, clientBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		return conn.Close()
	}

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) fanOut(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("event", msg.Event).Msg("failed to marshal notification")
		return
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// too slow to keep up
			h.drop(c)
			h.log.Warn().Stringer("client", c.id).Msg("client dropped, send buffer full")
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// readPump discards anything the client sends; it only exists to notice
// the connection closing and to answer pings.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

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

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
