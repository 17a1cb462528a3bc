// Package stream broadcasts a running plan's per-hour reports to connected
// WebSocket clients, adapted from the teacher's WebServer ws-hub: a
// sync.Map client registry drained through a single broadcast channel.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/devskill-org/dayahead-planner/runner"
)

// Hub fans out HourlyReport updates to every connected client.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   sync.Map
	broadcast chan []byte
	done      chan struct{}
}

// NewHub constructs a Hub. Call ServeHTTP as the handler for the WebSocket
// route and Start to begin draining the broadcast channel.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

// Start runs the broadcast loop until Stop is called.
func (h *Hub) Start() {
	go h.handleBroadcasts()
}

// Stop closes every connected client and halts the broadcast loop.
func (h *Hub) Stop() {
	close(h.done)
	h.clients.Range(func(key, _ any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})
}

// PublishHour broadcasts one hour's report to every connected client.
func (h *Hub) PublishHour(report runner.HourlyReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("stream: marshal: %w", err)
	}
	select {
	case h.broadcast <- data:
	default:
		return fmt.Errorf("stream: broadcast channel full")
	}
	return nil
}

// ServeHTTP upgrades the connection and registers it as a broadcast target.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.clients.Store(conn, true)

	defer func() {
		h.clients.Delete(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) handleBroadcasts() {
	for {
		select {
		case message := <-h.broadcast:
			h.clients.Range(func(key, _ any) bool {
				conn, ok := key.(*websocket.Conn)
				if !ok {
					return true
				}
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					h.clients.Delete(conn)
				}
				return true
			})
		case <-h.done:
			return
		}
	}
}
