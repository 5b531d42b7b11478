package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second
	// sendBufferSize is the per-client backlog. A client that falls this far
	// behind is dropped rather than allowed to stall the fan-out.
	sendBufferSize = 64
)

// wsClient owns one connection. All writes go through send; the write pump is
// the only goroutine touching the wire, so broadcast never blocks on I/O.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump drains send until the channel closes or a write fails, then
// closes the connection, which also unblocks the read loop.
func (c *wsClient) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, nil)
}

// Hub fans resource events out to websocket clients. It is a plain broadcast:
// clients receive every event on the channel and filter on their side.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logrus.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run consumes the redis subscription until the context ends.
func (h *Hub) Run(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()

	// Clients only listen; the read loop exists to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(client)
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked deregisters a client and closes its send channel, which ends
// the write pump. Callers must hold h.mu; safe to call twice.
func (h *Hub) removeLocked(client *wsClient) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// broadcast queues the payload to every client without blocking. A client
// whose backlog is full is dropped on the spot.
func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.logger.Debug("dropping slow websocket client")
			h.removeLocked(client)
		}
	}
}
