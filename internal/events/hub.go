package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

type wsClient struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub keeps one live-feed websocket per user and broadcasts ledger events to
// all of them. Publish never waits on a socket: each client has a buffered
// queue drained by its own writer, and a client whose queue is full is
// disconnected.
type Hub struct {
	connections map[int64]*wsClient
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*wsClient),
	}
}

// ServeWS registers conn for userID and blocks until the client goes away.
func (h *Hub) ServeWS(userID int64, conn *websocket.Conn) {
	c := &wsClient{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[c.userID]; exists {
		h.closeLocked(old)
	}
	h.connections[c.userID] = c
}

// drop disconnects c unless a newer socket of the same user replaced it.
func (h *Hub) drop(c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if existing, ok := h.connections[c.userID]; ok && existing == c {
		h.closeLocked(c)
	}
}

func (h *Hub) closeLocked(c *wsClient) {
	delete(h.connections, c.userID)
	close(c.send)
	_ = c.conn.Close()
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

// Publish queues the event for every connected user.
func (h *Hub) Publish(_ context.Context, key string, payload any) error {
	data, err := json.Marshal(NewEnvelope(key, payload))
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	var slow []*wsClient
	h.mutex.RLock()
	for _, c := range h.connections {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mutex.RUnlock()

	for _, c := range slow {
		h.drop(c)
	}
	return nil
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, c := range h.connections {
		h.closeLocked(c)
	}
}

// readPump only detects the close and answers pings; the feed is one-way.
func (h *Hub) readPump(c *wsClient) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMsgSize)
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

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}
