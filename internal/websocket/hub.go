package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/virginiacakes/storefront-backend/pkg/logger"
)

// Admin feed event types
const (
	EventTransferSubmitted = "transfer_submitted"
	EventTransferVerified  = "transfer_verified"
	EventOrderPaid         = "order_paid"
	EventOrderStatus       = "order_status_changed"
	EventCustomOrder       = "custom_order_submitted"
)

const (
	// client messages allowed per second
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// Event is one message on the admin live feed
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	At      time.Time              `json:"at"`
}

// Broadcaster publishes events to connected admins
type Broadcaster interface {
	Broadcast(event Event)
}

// Client is one admin websocket session
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        uint
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// NewClient builds a client for a connected admin
func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Hub fans events out to every connected admin. One user may hold several sessions.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("Admin feed client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for _, list := range h.clients {
				for _, client := range list {
					select {
					case client.Send <- message:
					default:
						slow = append(slow, client)
					}
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"user_id": client.UserID,
				})
				h.removeClient(client)
			}
		}
	}
}

// Stop ends Run and closes every client channel
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
	if !ok {
		return
	}

	remaining := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}

	if len(remaining) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = remaining
	}
	close(client.Send)

	logger.Info("Admin feed client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(remaining),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

// Broadcast queues an event for every admin. It never blocks; a full queue drops the event.
func (h *Hub) Broadcast(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal admin event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": event.Type,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ConnectedAdmins returns the number of admins with at least one open session
func (h *Hub) ConnectedAdmins() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsConnected reports whether the user has an open session
func (h *Hub) IsConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// allow reports whether the client is still under its per-second message budget
func (c *Client) allow(now time.Time) bool {
	c.RateMu.Lock()
	defer c.RateMu.Unlock()
	if now.Sub(c.LastResetTime) >= time.Second {
		c.MessageCount = 0
		c.LastResetTime = now
	}
	c.MessageCount++
	return c.MessageCount <= maxMessagesPerSecond
}

// HandleClientMessage logs messages from the admin dashboard. The feed is server to client only.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	if !client.allow(time.Now()) {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}

	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	logger.Debug("Admin feed message received", map[string]interface{}{
		"user_id": client.UserID,
		"type":    msg.Type,
	})
}
