// Package ws implements the real-time push channel. The hub fans state-change
// events out to every connected client; delivery is fire-and-forget and never
// required for correctness, so a failed write just drops the client.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Envelope is the wire format for broadcast events.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected websocket clients and broadcasts events to all of
// them. There is no per-user filtering; payloads carry no secrets.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Handler returns the Fiber handler that upgrades and serves one client
// connection until it closes.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		h.add(c)
		defer h.remove(c)

		// Clients only listen; drain reads to detect disconnect.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}

// Publish broadcasts one named event to every connected client. Errors are
// logged and the failing client dropped; the caller never sees a failure.
func (h *Hub) Publish(event string, payload interface{}) {
	body, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("ws: failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, body); err != nil {
			log.Printf("ws: dropping client after write error: %v", err)
			c.Close()
			delete(h.clients, c)
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	c.Close()
}
