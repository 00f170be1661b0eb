// Package ws pushes domain events to connected order screens. Every client
// receives every event; filtering happens client-side. Slow clients are
// dropped rather than allowed to stall the broadcast path.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the wire envelope pushed to clients.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sentAt"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	log          *zap.Logger
	sendBuffer   int
	pingInterval time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(log *zap.Logger, sendBuffer int, pingInterval time.Duration) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		log:          log,
		sendBuffer:   sendBuffer,
		pingInterval: pingInterval,
		clients:      make(map[*client]struct{}),
	}
}

// Publish implements the events sink: it fans the event out to every
// connected client. A client whose buffer is full is disconnected.
func (h *Hub) Publish(ctx context.Context, routingKey string, payload any) {
	body, err := json.Marshal(Event{Type: routingKey, Payload: payload, SentAt: time.Now()})
	if err != nil {
		h.log.Error("ws event not serializable", zap.String("type", routingKey), zap.Error(err))
		return
	}

	h.mu.RLock()
	stale := make([]*client, 0)
	for c := range h.clients {
		select {
		case c.send <- body:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.log.Warn("dropping slow websocket client")
		h.remove(c)
	}
}

// ServeHTTP upgrades the connection and keeps it alive until the client goes
// away or falls behind.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop drains incoming frames so pongs and close frames are processed;
// clients are not expected to send anything meaningful.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// ClientCount reports connected clients, for the health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
