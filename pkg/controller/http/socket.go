package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fuelrats/ratboard/pkg/usecase"
	"github.com/fuelrats/ratboard/pkg/utils/logging"
	"github.com/fuelrats/ratboard/pkg/utils/safe"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The tracker is a read-only feed, any origin may subscribe
	CheckOrigin: func(r *http.Request) bool { return true },
}

// boardFrame is one websocket message
type boardFrame struct {
	Kind   string    `json:"kind"`
	Case   *caseView `json:"case,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Hub fans board events out to websocket subscribers. Clients that cannot
// keep up are dropped rather than backpressuring the board.
type Hub struct {
	mu      sync.Mutex
	clients map[*socketClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*socketClient]struct{})}
}

type socketClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

// closeConn is shared by both pumps, whichever exits first wins
func (c *socketClient) closeConn() {
	c.closeOnce.Do(func() {
		safe.Close(context.Background(), c.conn)
	})
}

// Publish broadcasts a board event to every subscriber. Safe to register
// directly with Board.Notify.
func (h *Hub) Publish(event usecase.BoardEvent) {
	frame := boardFrame{
		Kind:   string(event.Kind),
		Case:   newCaseView(event.Case),
		Detail: event.Detail,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		logging.Default().Error("failed to marshal board frame", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer, cut it loose
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ClientCount reports the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *socketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *socketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &socketClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.register(c)

	go c.writePump(h)
	go c.readPump(h)
}

// readPump discards inbound messages; its job is to notice the peer going
// away and to answer pings.
func (c *socketClient) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.closeConn()
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

func (c *socketClient) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(c)
		c.closeConn()
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
