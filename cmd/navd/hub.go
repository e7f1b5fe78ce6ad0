package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser dashboard is served from a different origin than the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedHub fans navigation snapshots out to connected websocket clients.
// Slow clients are dropped rather than allowed to stall the feed.
type feedHub struct {
	mutex   sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newFeedHub() *feedHub {
	return &feedHub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades a dashboard connection and keeps it registered until it
// disconnects
func (h *feedHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Feed upgrade failed: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = struct{}{}
	h.mutex.Unlock()

	// Drain control frames until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mutex.Lock()
	delete(h.clients, conn)
	h.mutex.Unlock()
	conn.Close()
}

// Broadcast sends the value as JSON to every connected client
func (h *feedHub) Broadcast(v interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(v); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
