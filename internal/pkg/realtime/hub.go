// Package realtime streams portal events (session changes, notifications)
// to connected browsers over WebSocket
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types
const (
	EventSession      = "session"
	EventNotification = "notification"
)

// Event is one message pushed to every connected client
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType string, data interface{}) Event {
	return Event{Type: eventType, Data: data, Timestamp: time.Now()}
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	mu    sync.RWMutex
	count int

	logger zerolog.Logger
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set until Close is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount()
			h.logger.Debug().Str("addr", client.addr).Int("clients", len(h.clients)).Msg("Client registered")

		case client := <-h.unregister:
			h.drop(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Close disconnects every client and stops Run
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Publish queues an event for broadcast. Events published after Close or
// while the queue is full are dropped.
func (h *Hub) Publish(event Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("type", event.Type).Msg("Realtime queue full, event dropped")
	}
}

// Clients reports how many clients are connected
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// drop must only be called from Run
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.setCount()
	h.logger.Debug().Str("addr", client.addr).Int("clients", len(h.clients)).Msg("Client unregistered")
}

func (h *Hub) broadcastEvent(event Event) {
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event for broadcast")
		return
	}

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer
			h.drop(client)
		}
	}

	h.logger.Debug().Str("type", event.Type).Int("clientCount", len(h.clients)).Msg("Event broadcasted")
}
