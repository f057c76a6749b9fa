// Package websocket pushes ladder notifications to connected clients. Each
// client receives the events addressed to its player plus the global season
// lifecycle events. Clients only listen; there is no inbound command path.
package websocket

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sprintduel/ladder-server/internal/events"
)

type Hub struct {
	bus *events.Bus

	mu      sync.RWMutex
	clients map[*Client]bool
	stopped bool

	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{} // closed when Run() exits
}

func NewHub(bus *events.Bus) *Hub {
	return &Hub{
		bus:        bus,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run pumps bus events out to clients until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)

	evts, cancel := h.bus.Subscribe(256)
	defer cancel()

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case evt, ok := <-evts:
			if !ok {
				return
			}
			h.broadcast(evt)
		}
	}
}

// broadcast delivers player events to that player's clients and global
// events (PlayerID == uuid.Nil) to everyone.
func (h *Hub) broadcast(evt events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if evt.PlayerID != uuid.Nil && evt.PlayerID != client.playerID {
			continue
		}
		client.Send(evt)
	}
}

// Stop gracefully shuts down the hub. Blocks until Run() has exited; safe to
// call from multiple goroutines.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister safely detaches a client, tolerating a stopped hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
