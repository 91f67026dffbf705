package websocket

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/session"
)

// rateLimitKeyFromRequest returns a key for rate limiting (e.g. client IP).
func rateLimitKeyFromRequest(r *http.Request) string {
	if x := r.Header.Get("X-Real-IP"); x != "" {
		return x
	}
	if x := r.Header.Get("X-Forwarded-For"); x != "" {
		return x
	}
	return r.RemoteAddr
}

// WSHandler handles WebSocket upgrade requests for room connections.
type WSHandler struct {
	hub         *Hub
	manager     *session.Manager
	tokenSecret []byte
}

// NewWSHandler creates a new WSHandler. tokenSecret signs the join tokens; if
// nil/empty, every upgrade is rejected.
func NewWSHandler(hub *Hub, manager *session.Manager, tokenSecret []byte) *WSHandler {
	return &WSHandler{hub: hub, manager: manager, tokenSecret: tokenSecret}
}

// HandleRoomWebSocket handles GET /ws/rooms/{code} with token auth. The
// client sends its join token via query param or Authorization header.
func (h *WSHandler) HandleRoomWebSocket(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		const prefix = "Bearer "
		if v := r.Header.Get("Authorization"); strings.HasPrefix(v, prefix) {
			token = strings.TrimSpace(v[len(prefix):])
		}
	}
	if token == "" || len(h.tokenSecret) == 0 {
		h.reject(w, "missing or invalid token")
		return
	}
	claims, err := auth.VerifyToken(token, h.tokenSecret)
	if err != nil {
		log.Printf("websocket auth: code=%s token verification failed: %v", code, err)
		h.reject(w, "unauthorized")
		return
	}
	if claims.RoomID != code {
		h.reject(w, "room does not match token")
		return
	}
	room, err := h.manager.Room(r.Context(), code)
	if err != nil {
		log.Printf("websocket: room not found for code %q: %v", code, err)
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	seat := room.Seat(claims.UserID)
	if seat == nil {
		h.reject(w, "player not in room")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	// Use Background so message handling is not tied to the HTTP request
	// lifecycle; the request context dies when this handler returns.
	client := &Client{
		hub:          h.hub,
		conn:         conn,
		send:         make(chan *ServerEnvelope, 256),
		RoomID:       code,
		UserID:       claims.UserID,
		DisplayName:  seat.Username,
		RateLimitKey: rateLimitKeyFromRequest(r),
		ctx:          context.Background(),
	}
	client.hub.register <- client
	if h.hub.handler != nil {
		h.hub.handler.ClientBack(client.ctx, client)
	}

	go client.writePump()
	go client.readPump()
}

// reject responds with 401 before upgrade (auth is always checked before upgrading).
func (h *WSHandler) reject(w http.ResponseWriter, reason string) {
	http.Error(w, reason, http.StatusUnauthorized)
}
