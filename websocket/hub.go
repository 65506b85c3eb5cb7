package websocket

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
)

// ErrNotConnected is returned when the user has no open connection
var ErrNotConnected = errors.New("user not connected")

const sendBuffer = 16

// Message is the envelope written to clients
type Message struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Client is one open connection. A user may hold several, one per tab or device.
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
	send   chan Message
}

// Hub maintains the set of active clients per user
type Hub struct {
	clients    map[primitive.ObjectID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok && conns[client] {
				delete(conns, client)
				close(client.send)
				if len(conns) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToUser queues a notification on every connection of userID. Slow
// clients whose buffer is full miss the message rather than block the caller.
func (h *Hub) SendToUser(userID primitive.ObjectID, n models.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.clients[userID]
	if len(conns) == 0 {
		return ErrNotConnected
	}

	msg := Message{Type: string(n.Type), Message: n.Message, Data: n}
	for client := range conns {
		select {
		case client.send <- msg:
		default:
		}
	}
	return nil
}

// Connected reports how many connections userID holds
func (h *Hub) Connected(userID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
