package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// Hub tracks live connections per user and routes board events to them.
type Hub struct {
	// A user may watch the board from several tabs.
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	events     chan domain.Event
	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns.
	done chan struct{}

	logger *slog.Logger
}

var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a hub; start it with Run.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		events:     make(chan domain.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast queues an event for delivery. It never blocks the board: when
// the queue is full the event is dropped and logged.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("event queue full, dropping event",
			"event_type", event.Type,
			"user_id", event.UserID,
			"ticket_id", event.TicketID,
		)
	}
	return nil
}

// Register hands a connected client to the hub. After the hub has stopped
// the client is closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Run is the hub's event loop; it returns, closing every client, when ctx
// is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			h.remove(client)

		case event := <-h.events:
			h.route(event)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	userClients := h.clients[client.userID]
	if userClients == nil {
		userClients = make(map[*Client]struct{})
		h.clients[client.userID] = userClients
	}
	userClients[client] = struct{}{}
	connections := len(userClients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		"user_id", client.userID,
		"connections", connections,
	)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if userClients, ok := h.clients[client.userID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.userID)
		}
	}
	h.mu.Unlock()

	client.close()
	h.logger.Info("client unregistered", "user_id", client.userID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, userClients := range h.clients {
		for client := range userClients {
			client.close()
		}
		delete(h.clients, userID)
	}
}

// route delivers an event to its user's connections; events without a
// user go to everyone. A client that cannot keep up is disconnected.
func (h *Hub) route(event domain.Event) {
	h.mu.RLock()
	var targets []*Client
	for userID, userClients := range h.clients {
		if event.UserID != "" && userID != event.UserID {
			continue
		}
		for client := range userClients {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if client.enqueue(event) {
			continue
		}
		h.logger.Warn("client send buffer full, disconnecting",
			"user_id", client.userID,
			"event_type", event.Type,
		)
		// Run owns the map; remove the client on its next iteration.
		go h.leave(client)
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// IsUserConnected reports whether the user has at least one live connection.
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
