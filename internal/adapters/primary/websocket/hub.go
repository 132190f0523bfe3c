package websocket

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// Hub maintains the set of active clients and routes events to them by topic.
type Hub struct {
	// clients maps user IDs to their active connections. A user can have
	// several (multiple tabs or devices).
	clients map[string]map[*Client]bool

	// topics maps a topic to its subscribed clients
	topics map[string]map[*Client]bool

	broadcast chan domain.Event

	Register   chan *Client
	Unregister chan *Client

	// mu protects clients and topics
	mu sync.RWMutex

	logger *slog.Logger
}

var _ ports.EventBroadcaster = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		topics:     make(map[string]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// ValidTopic reports whether clients may subscribe to topic.
func ValidTopic(topic string) bool {
	if topic == domain.TopicDashboard {
		return true
	}
	name, ok := strings.CutPrefix(topic, domain.TopicReportsPrefix)
	if !ok {
		return false
	}
	kind, err := domain.ParseRecordKind(name)
	return err == nil && domain.ReportTopic(kind) == topic
}

// Broadcast queues an event for the subscribers of event.Topic. Events are
// dropped, not blocked on, when the queue is full.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"topic", event.Topic,
		)
	}
	return nil
}

// Run is the hub's event loop. It returns when ctx is done, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.publish(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true

	h.logger.Info("client registered",
		"user_id", client.UserID,
		"total_connections", len(h.clients[client.UserID]),
	)
}

// unregisterClient removes a client from the hub and all of its topics.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.UserID]
	if !ok || !userClients[client] {
		return
	}
	delete(userClients, client)
	if len(userClients) == 0 {
		delete(h.clients, client.UserID)
	}

	for _, topic := range client.Subscriptions() {
		h.leaveLocked(client, topic)
	}

	client.CloseSend()

	h.logger.Info("client unregistered", "user_id", client.UserID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userClients := range h.clients {
		for client := range userClients {
			client.CloseSend()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	h.topics = make(map[string]map[*Client]bool)
}

// publish delivers an event to every client subscribed to its topic.
func (h *Hub) publish(event domain.Event) {
	h.mu.RLock()
	subscribers := collect(h.topics[event.Topic])
	h.mu.RUnlock()

	if len(subscribers) == 0 {
		return
	}

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"topic", event.Topic,
		"client_count", len(subscribers),
	)

	for _, client := range subscribers {
		if !client.enqueue(event) {
			// A client that cannot keep up is disconnected.
			h.logger.Warn("client send buffer full, unregistering", "user_id", client.UserID)
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][client] = true
	client.addSubscription(topic)

	h.logger.Debug("client subscribed", "user_id", client.UserID, "topic", topic)
}

func (h *Hub) unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(client, topic)

	h.logger.Debug("client unsubscribed", "user_id", client.UserID, "topic", topic)
}

func (h *Hub) leaveLocked(client *Client, topic string) {
	if subscribers, ok := h.topics[topic]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.topics, topic)
		}
	}
	client.removeSubscription(topic)
}

// SendToUser delivers an event to every connection of one user, skipping
// connections whose buffer is full.
func (h *Hub) SendToUser(userID string, event domain.Event) {
	h.mu.RLock()
	connections := collect(h.clients[userID])
	h.mu.RUnlock()

	for _, client := range connections {
		client.enqueue(event)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// SubscriberCount returns the number of clients subscribed to topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func collect(set map[*Client]bool) []*Client {
	out := make([]*Client, 0, len(set))
	for client := range set {
		out = append(out, client)
	}
	return out
}
