package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendBufferSize = 256
)

// Message types sent by clients.
const (
	MessageSubscribe   = "SUBSCRIBE"
	MessageUnsubscribe = "UNSUBSCRIBE"
	MessagePing        = "PING"
)

// Timing controls keep-alive of a connection. PingInterval must be less
// than PongWait.
type Timing struct {
	PingInterval time.Duration
	PongWait     time.Duration
}

func DefaultTiming() Timing {
	return Timing{PingInterval: 54 * time.Second, PongWait: 60 * time.Second}
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string

	send   chan domain.Event
	timing Timing

	mu            sync.Mutex
	closed        bool
	subscriptions map[string]bool

	logger *slog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, timing Timing, logger *slog.Logger) *Client {
	if timing.PongWait <= 0 || timing.PingInterval <= 0 || timing.PingInterval >= timing.PongWait {
		timing = DefaultTiming()
	}
	return &Client{
		Hub:           hub,
		Conn:          conn,
		UserID:        userID,
		send:          make(chan domain.Event, sendBufferSize),
		timing:        timing,
		subscriptions: make(map[string]bool),
		logger:        logger.With("user_id", userID),
	}
}

// enqueue queues an event without blocking. It returns false when the
// buffer is full; events for a closed client are discarded.
func (c *Client) enqueue(event domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// CloseSend closes the outbound queue exactly once.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) addSubscription(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[topic] = true
}

func (c *Client) removeSubscription(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, topic)
}

// Subscriptions returns a copy of the client's topics.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	topics := make([]string, 0, len(c.subscriptions))
	for topic := range c.subscriptions {
		topics = append(topics, topic)
	}
	return topics
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timing.PongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.timing.PongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps events from the hub to the websocket connection.
// It runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.timing.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// ClientMessage is a message sent by the browser.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type TopicPayload struct {
	Topic string `json:"topic"`
}

func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case MessageSubscribe, MessageUnsubscribe:
		var p TopicPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.logger.Warn("failed to unmarshal topic payload", "error", err)
			return
		}
		if !ValidTopic(p.Topic) {
			c.logger.Warn("rejected unknown topic", "topic", p.Topic)
			return
		}
		if msg.Type == MessageSubscribe {
			c.Hub.subscribe(c, p.Topic)
		} else {
			c.Hub.unsubscribe(c, p.Topic)
		}

	case MessagePing:
		c.enqueue(domain.Event{Type: domain.EventPong})

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}
