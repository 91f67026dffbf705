package websocket

import (
	"log"
	"sync"
)

// Hub maintains the set of active clients, indexed both by room and by user,
// and fans server envelopes out to them. It implements the session layer's
// Emitter, so room actors publish through it without knowing about sockets.
type Hub struct {
	// Registered clients by room_id -> client set
	rooms map[string]map[*Client]bool

	// Registered clients by user_id -> client set (a user may hold more than
	// one connection, e.g. two tabs)
	users map[string]map[*Client]bool

	// Outbound messages to fan out
	broadcast chan *BroadcastMessage

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Handler for inbound client messages
	handler *MessageHandler

	mu sync.RWMutex
}

// BroadcastMessage is one fan-out request. RoomID targets every client in a
// room; UserID targets one user's connections; Users targets an explicit
// recipient list (scoped chat).
type BroadcastMessage struct {
	RoomID        string
	UserID        string
	Users         []string
	Envelope      *ServerEnvelope
	ExcludeClient *Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		users:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *BroadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetHandler wires the inbound message handler.
func (h *Hub) SetHandler(handler *MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.RoomID] == nil {
				h.rooms[client.RoomID] = make(map[*Client]bool)
			}
			h.rooms[client.RoomID][client] = true
			if h.users[client.UserID] == nil {
				h.users[client.UserID] = make(map[*Client]bool)
			}
			h.users[client.UserID][client] = true
			total := len(h.rooms[client.RoomID])
			h.mu.Unlock()
			log.Printf("ws client registered room_id=%s user_id=%s total=%d", client.RoomID, client.UserID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.RoomID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.RoomID)
					}
				}
			}
			if conns, ok := h.users[client.UserID]; ok {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.users, client.UserID)
				}
			}
			h.mu.Unlock()
			log.Printf("ws client unregistered room_id=%s user_id=%s", client.RoomID, client.UserID)

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) deliver(message *BroadcastMessage) {
	if message.Envelope == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := map[*Client]bool{}
	if message.RoomID != "" {
		for client := range h.rooms[message.RoomID] {
			targets[client] = true
		}
	}
	if message.UserID != "" {
		for client := range h.users[message.UserID] {
			targets[client] = true
		}
	}
	for _, userID := range message.Users {
		for client := range h.users[userID] {
			targets[client] = true
		}
	}
	for client := range targets {
		if message.ExcludeClient != nil && client == message.ExcludeClient {
			continue
		}
		select {
		case client.send <- message.Envelope:
		default:
			// Slow consumer; drop the connection rather than block the hub.
			close(client.send)
			if room, ok := h.rooms[client.RoomID]; ok {
				delete(room, client)
			}
			if conns, ok := h.users[client.UserID]; ok {
				delete(conns, client)
			}
		}
	}
}

// Emit sends an event envelope to every client in a room.
func (h *Hub) Emit(roomID, eventType string, payload map[string]any) {
	h.broadcast <- &BroadcastMessage{
		RoomID:   roomID,
		Envelope: &ServerEnvelope{Type: ServerTypeEvent, Event: eventType, Payload: payload},
	}
}

// EmitToUser sends an event envelope to one user's connections only.
func (h *Hub) EmitToUser(userID, eventType string, payload map[string]any) {
	h.broadcast <- &BroadcastMessage{
		UserID:   userID,
		Envelope: &ServerEnvelope{Type: ServerTypeEvent, Event: eventType, Payload: payload},
	}
}

// EmitToUsers sends an envelope to an explicit recipient list (scoped chat).
func (h *Hub) EmitToUsers(users []string, envelope *ServerEnvelope, exclude *Client) {
	h.broadcast <- &BroadcastMessage{Users: users, Envelope: envelope, ExcludeClient: exclude}
}

// UserConnected reports whether a user currently holds at least one socket.
func (h *Hub) UserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// RoomClientCount returns the number of clients in a room.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[roomID]; ok {
		return len(room)
	}
	return 0
}
