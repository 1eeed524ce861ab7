package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/cursor"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// clientBuffer is the number of messages queued per client before it is
	// considered too slow and dropped.
	clientBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// overlayMessage is the wire form of one cursor effect.
type overlayMessage struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Delta    int     `json:"delta"`
	Behavior string  `json:"behavior,omitempty"`
}

type overlayClient struct {
	conn *websocket.Conn
	send chan []byte
}

// OverlayHub is a cursor.Host that mirrors the cursor to browser overlays
// over WebSocket. A client that connects while the cursor is visible is sent
// the current position straight away.
type OverlayHub struct {
	mu      sync.Mutex
	clients map[*overlayClient]struct{}
	visible bool
	x, y    float64
}

var _ cursor.Host = (*OverlayHub)(nil)

// NewOverlayHub creates an OverlayHub with no clients.
func NewOverlayHub() *OverlayHub {
	return &OverlayHub{clients: make(map[*overlayClient]struct{})}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *OverlayHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade error", "error", err)
		return
	}

	c := &overlayClient{conn: conn, send: make(chan []byte, clientBuffer)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// Clients returns the number of connected overlays.
func (h *OverlayHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *OverlayHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}

func (h *OverlayHub) Show() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = true
	h.broadcast(overlayMessage{Type: "show"})
}

func (h *OverlayHub) Hide() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = false
	h.broadcast(overlayMessage{Type: "hide"})
}

func (h *OverlayHub) MoveTo(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.x, h.y = x, y
	h.broadcast(overlayMessage{Type: "move", X: x, Y: y})
}

func (h *OverlayHub) ClickAt(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcast(overlayMessage{Type: "click", X: x, Y: y})
}

func (h *OverlayHub) ScrollBy(delta int, behavior cursor.ScrollBehavior) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcast(overlayMessage{Type: "scroll", Delta: delta, Behavior: string(behavior)})
}

func (h *OverlayHub) register(c *overlayClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	slog.Debug("overlay connected", "clients", len(h.clients))

	if h.visible {
		h.send(c, overlayMessage{Type: "show"})
		h.send(c, overlayMessage{Type: "move", X: h.x, Y: h.y})
	}
}

func (h *OverlayHub) unregister(c *overlayClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.drop(c)
		slog.Debug("overlay disconnected", "clients", len(h.clients))
	}
}

// broadcast must be called with h.mu held.
func (h *OverlayHub) broadcast(msg overlayMessage) {
	if len(h.clients) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to encode overlay message", "error", err)
		return
	}
	for c := range h.clients {
		h.enqueue(c, data)
	}
}

// send must be called with h.mu held.
func (h *OverlayHub) send(c *overlayClient, msg overlayMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.enqueue(c, data)
}

func (h *OverlayHub) enqueue(c *overlayClient, data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("dropping slow overlay client")
		h.drop(c)
	}
}

func (h *OverlayHub) drop(c *overlayClient) {
	delete(h.clients, c)
	close(c.send)
}

// readPump discards inbound messages; reading is what surfaces pongs and
// disconnects.
func (h *OverlayHub) readPump(c *overlayClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only goroutine that writes to c.conn.
func (h *OverlayHub) writePump(c *overlayClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
