package sync

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub relays bus events to connected websocket clients so kiosks learn
// about table changes without polling.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Run drains the bus and broadcasts every event until the bus subscription
// is closed. Meant to run in its own goroutine.
func (h *Hub) Run(bus *Bus) {
	events, cancel := bus.Subscribe("")
	defer cancel()

	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("ws hub: failed to marshal event: %v", err)
			continue
		}
		h.broadcast(payload)
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, send := range h.clients {
		select {
		case send <- payload:
		default:
			// Buffer full or client dead; the read loop will reap it.
		}
	}
}

// ServeConn registers the connection and pumps outbound events until the
// peer disconnects. Runs inside the websocket handler goroutine. The send
// channel is never closed; broadcast may race with teardown and only the
// map membership decides delivery.
func (h *Hub) ServeConn(conn *websocket.Conn) {
	send := make(chan []byte, 32)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Reads only serve to detect the close handshake.
	done := make(chan struct{})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	for {
		select {
		case payload := <-send:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
