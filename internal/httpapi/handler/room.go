package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/game"
	"github.com/vntrieu/mafia/internal/session"
)

// Validation limits for room endpoints.
const (
	DisplayNameMinLen = 1
	DisplayNameMaxLen = 64
	PasswordMaxLen    = 128
)

// roomCodePattern matches the 6-char join codes (A-Z excluding I,O; 2-9).
var roomCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

// CreateRoomRequest is the body for POST /api/rooms.
type CreateRoomRequest struct {
	DisplayName string       `json:"display_name"`
	Password    string       `json:"password,omitempty"`
	Options     game.Options `json:"options,omitempty"`
}

// JoinRoomRequest is the body for POST /api/rooms/{code}/join.
type JoinRoomRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password,omitempty"`
}

// RoomResponse is returned by create and join. The token authenticates the
// caller's websocket connection for this room.
type RoomResponse struct {
	Room      RoomView   `json:"room"`
	UserID    string     `json:"user_id"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RoomView is the public shape of a room: no password hash.
type RoomView struct {
	ID       string       `json:"id"`
	HostID   string       `json:"host_id"`
	Status   string       `json:"status"`
	Seats    []game.Seat  `json:"seats"`
	Options  game.Options `json:"options"`
	HasPass  bool         `json:"has_password"`
}

func roomView(r *game.Room) RoomView {
	return RoomView{
		ID:      r.ID,
		HostID:  r.HostID,
		Status:  string(r.Status),
		Seats:   r.Seats,
		Options: r.Options,
		HasPass: r.PasswordHash != "",
	}
}

// RoomHandler handles room-related HTTP requests.
type RoomHandler struct {
	manager     *session.Manager
	tokenSecret []byte
}

// NewRoomHandler creates a new RoomHandler. If tokenSecret is non-empty,
// create/join responses include a WebSocket auth token.
func NewRoomHandler(manager *session.Manager, tokenSecret []byte) *RoomHandler {
	return &RoomHandler{manager: manager, tokenSecret: tokenSecret}
}

func validateDisplayName(displayName string) string {
	s := strings.TrimSpace(displayName)
	if len(s) < DisplayNameMinLen {
		return "display_name is required"
	}
	if len(s) > DisplayNameMaxLen {
		return fmt.Sprintf("display_name must be at most %d characters", DisplayNameMaxLen)
	}
	return ""
}

func validatePasswordLength(password string) string {
	if len(password) > PasswordMaxLen {
		return "password must be at most 128 characters"
	}
	return ""
}

func validateRoomCode(code string) bool {
	return len(code) == 6 && roomCodePattern.MatchString(code)
}

// CreateRoom handles POST /api/rooms. The requester becomes the host.
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validateDisplayName(req.DisplayName); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if msg := validatePasswordLength(req.Password); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	userID := uuid.NewString()
	room, err := h.manager.CreateRoom(r.Context(), userID, req.DisplayName, req.Password, req.Options)
	if err != nil {
		log.Printf("[%s] create room error: %v", requestID(r), err)
		http.Error(w, "failed to create room", http.StatusInternalServerError)
		return
	}

	resp := RoomResponse{Room: roomView(room), UserID: userID}
	if len(h.tokenSecret) > 0 {
		token, expiresAt, err := auth.GenerateToken(room.ID, userID, h.tokenSecret, auth.DefaultTokenExpiry)
		if err != nil {
			log.Printf("[%s] generate token error: %v", requestID(r), err)
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}
		resp.Token = token
		resp.ExpiresAt = &expiresAt
	}

	writeJSON(w, http.StatusCreated, resp, r)
}

// JoinRoom handles POST /api/rooms/{code}/join. Joining a room whose game is
// already running seats the caller as a spectator.
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := chi.URLParam(r, "code")
	if !validateRoomCode(code) {
		http.Error(w, "invalid room code format", http.StatusBadRequest)
		return
	}

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validateDisplayName(req.DisplayName); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if msg := validatePasswordLength(req.Password); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	userID := uuid.NewString()
	room, err := h.manager.JoinRoom(r.Context(), code, userID, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRoomNotFound):
			http.Error(w, "room not found", http.StatusNotFound)
		case errors.Is(err, session.ErrWrongPassword):
			http.Error(w, "invalid password", http.StatusUnauthorized)
		default:
			log.Printf("[%s] join room error: %v", requestID(r), err)
			http.Error(w, "failed to join room", http.StatusInternalServerError)
		}
		return
	}

	resp := RoomResponse{Room: roomView(room), UserID: userID}
	if len(h.tokenSecret) > 0 {
		token, expiresAt, err := auth.GenerateToken(room.ID, userID, h.tokenSecret, auth.DefaultTokenExpiry)
		if err != nil {
			log.Printf("[%s] generate token error: %v", requestID(r), err)
			http.Error(w, "failed to join room", http.StatusInternalServerError)
			return
		}
		resp.Token = token
		resp.ExpiresAt = &expiresAt
	}

	writeJSON(w, http.StatusOK, resp, r)
}

// GetRoom handles GET /api/rooms/{code}: the public room view plus, when a
// game is running, the role-redacted observer snapshot with the match log.
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := chi.URLParam(r, "code")
	if !validateRoomCode(code) {
		http.Error(w, "invalid room code format", http.StatusBadRequest)
		return
	}

	snapshot, err := h.manager.Snapshot(r.Context(), code, "")
	if err != nil {
		if errors.Is(err, session.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		log.Printf("[%s] get room error: %v", requestID(r), err)
		http.Error(w, "failed to get room", http.StatusInternalServerError)
		return
	}
	delete(snapshot, "room") // replace with the password-free view
	room, err := h.manager.Room(r.Context(), code)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	snapshot["room"] = roomView(room)

	writeJSON(w, http.StatusOK, snapshot, r)
}

func writeJSON(w http.ResponseWriter, status int, body any, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[%s] encode response error: %v", requestID(r), err)
	}
}
