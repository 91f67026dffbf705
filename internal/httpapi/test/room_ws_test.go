package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	wsgorilla "github.com/gorilla/websocket"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/game"
	"github.com/vntrieu/mafia/internal/httpapi"
	"github.com/vntrieu/mafia/internal/session"
	"github.com/vntrieu/mafia/internal/store"
	"github.com/vntrieu/mafia/internal/websocket"
)

var testTokenSecret = []byte("test-secret")

// setupRoomWS builds a manager over in-memory stores, a running hub, and the
// WS-only router, with one room created for the host.
func setupRoomWS(t *testing.T) (http.Handler, *session.Manager, string, string) {
	t.Helper()
	sessions := store.NewSessionStore(store.NewMemoryKV())
	manager := session.NewManager(sessions, store.NewMemoryWallet())
	t.Cleanup(manager.Shutdown)

	hub := websocket.NewHub()
	hub.SetHandler(websocket.NewMessageHandler(hub, manager, nil))
	manager.SetEmitter(hub)
	go hub.Run()

	room, err := manager.CreateRoom(context.Background(), "host-1", "Host", "", game.Options{})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	wsHandler := websocket.NewWSHandler(hub, manager, testTokenSecret)
	router := httpapi.SetupRoomWSRouter(wsHandler)
	token := mustToken(t, room.ID, "host-1")
	return router, manager, room.ID, token
}

func mustToken(t *testing.T, roomID, userID string) string {
	t.Helper()
	token, _, err := auth.GenerateToken(roomID, userID, testTokenSecret, auth.DefaultTokenExpiry)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// serverWSURL converts httptest.Server URL to ws URL.
func serverWSURL(server *httptest.Server, path string) string {
	return "ws" + server.URL[4:] + path
}

// TestRoomWebSocket_Unauthorized verifies that GET /ws/rooms/{code} without a valid token returns 401.
func TestRoomWebSocket_Unauthorized(t *testing.T) {
	router, _, code, _ := setupRoomWS(t)

	// No token -> 401
	req := httptest.NewRequest(http.MethodGet, "/ws/rooms/"+code, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	// Invalid token -> 401
	req2 := httptest.NewRequest(http.MethodGet, "/ws/rooms/"+code+"?token=invalid", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	if w2.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with invalid token, got %d", w2.Code)
	}
}

// TestRoomWebSocket_TokenForOtherRoom verifies that a token signed for a
// different room code is rejected.
func TestRoomWebSocket_TokenForOtherRoom(t *testing.T) {
	router, _, code, _ := setupRoomWS(t)
	foreign := mustToken(t, "ZZZZZZ", "host-1")

	req := httptest.NewRequest(http.MethodGet, "/ws/rooms/"+code+"?token="+foreign, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for foreign token, got %d", w.Code)
	}
}

// TestRoomWebSocket_ValidToken_SyncState connects with valid token, sends sync_state, asserts state envelope.
func TestRoomWebSocket_ValidToken_SyncState(t *testing.T) {
	router, _, code, token := setupRoomWS(t)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := serverWSURL(server, "/ws/rooms/"+code+"?token="+token)
	conn, _, err := wsgorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "sync_state"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var envelope struct {
		Type    string         `json:"type"`
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&envelope); err != nil {
		t.Fatalf("read: %v", err)
	}
	if envelope.Type != "state" {
		t.Errorf("expected envelope type state, got %s", envelope.Type)
	}
	if envelope.Payload["room"] == nil {
		t.Error("expected payload with room")
	}
}

// TestRoomWebSocket_ChatBroadcast: two clients connect; first sends chat, second receives it.
func TestRoomWebSocket_ChatBroadcast(t *testing.T) {
	router, manager, code, hostToken := setupRoomWS(t)

	if _, err := manager.JoinRoom(context.Background(), code, "user-2", "Player2", ""); err != nil {
		t.Fatalf("join room: %v", err)
	}
	player2Token := mustToken(t, code, "user-2")

	server := httptest.NewServer(router)
	defer server.Close()

	conn1, _, err := wsgorilla.DefaultDialer.Dial(serverWSURL(server, "/ws/rooms/"+code+"?token="+hostToken), nil)
	if err != nil {
		t.Fatalf("dial host: %v", err)
	}
	defer conn1.Close()

	conn2, _, err := wsgorilla.DefaultDialer.Dial(serverWSURL(server, "/ws/rooms/"+code+"?token="+player2Token), nil)
	if err != nil {
		t.Fatalf("dial player2: %v", err)
	}
	defer conn2.Close()

	time.Sleep(50 * time.Millisecond)

	chatMsg := map[string]any{"type": "chat", "payload": map[string]any{"message": "hello room"}}
	if err := conn1.WriteJSON(chatMsg); err != nil {
		t.Fatalf("write chat: %v", err)
	}

	// Player2 should receive the chat event (sender's own socket is excluded).
	var envelope struct {
		Type    string         `json:"type"`
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	conn2.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn2.ReadJSON(&envelope); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if envelope.Type != "event" {
		t.Errorf("expected type event, got %s", envelope.Type)
	}
	if envelope.Event != "chat" {
		t.Errorf("expected event chat, got %s", envelope.Event)
	}
	if envelope.Payload["message"] != "hello room" {
		t.Errorf("expected message hello room, got %v", envelope.Payload["message"])
	}
}

// TestRoomWebSocket_ReconnectSyncState: connect, disconnect, reconnect with same token, send sync_state, assert state.
func TestRoomWebSocket_ReconnectSyncState(t *testing.T) {
	router, _, code, token := setupRoomWS(t)
	server := httptest.NewServer(router)
	defer server.Close()
	wsURL := serverWSURL(server, "/ws/rooms/"+code+"?token="+token)

	conn1, _, err := wsgorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial 1: %v", err)
	}
	conn1.Close()

	time.Sleep(20 * time.Millisecond)

	conn2, _, err := wsgorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial 2 (reconnect): %v", err)
	}
	defer conn2.Close()

	conn2.WriteJSON(map[string]string{"type": "sync_state"})
	var envelope struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	conn2.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn2.ReadJSON(&envelope); err != nil {
		t.Fatalf("read after reconnect: %v", err)
	}
	if envelope.Type != "state" {
		t.Errorf("expected type state after reconnect, got %s", envelope.Type)
	}
	if envelope.Payload["room"] == nil {
		t.Error("expected payload with room after sync_state")
	}
}
