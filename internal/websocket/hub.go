package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is a real-time notification pushed to every connected client
// when the schedule changes.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Event types broadcast by the handlers.
const (
	EventScheduleGenerated   = "schedule_generated"
	EventScheduleWiped       = "schedule_wiped"
	EventAssignmentCompleted = "assignment_completed"
	EventCatalogChanged      = "catalog_changed"
	EventRosterChanged       = "roster_changed"
)

// Hub maintains the set of active WebSocket clients and broadcasts
// schedule events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to all connected clients. Slow clients whose
// buffers are full miss the event rather than block the sender.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
