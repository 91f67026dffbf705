package websocket

import (
	"context"
	"testing"
	"time"
)

func newTestClient(hub *Hub, roomID, userID string) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan *ServerEnvelope, 256),
		RoomID: roomID,
		UserID: userID,
		ctx:    context.Background(),
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "room-1", "user-1")
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	if count := hub.RoomClientCount("room-1"); count != 1 {
		t.Errorf("expected 1 client in room, got %d", count)
	}
	if !hub.UserConnected("user-1") {
		t.Error("expected user-1 to be connected")
	}

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if count := hub.RoomClientCount("room-1"); count != 0 {
		t.Errorf("expected 0 clients in room after unregister, got %d", count)
	}
	if hub.UserConnected("user-1") {
		t.Error("expected user-1 to be disconnected")
	}
}

func TestHub_MultipleClientsSameUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Same user holding two connections (two tabs)
	first := newTestClient(hub, "room-1", "user-1")
	second := newTestClient(hub, "room-1", "user-1")
	hub.register <- first
	hub.register <- second
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- first
	time.Sleep(10 * time.Millisecond)

	if !hub.UserConnected("user-1") {
		t.Error("expected user-1 still connected on second socket")
	}

	hub.unregister <- second
	time.Sleep(10 * time.Millisecond)

	if hub.UserConnected("user-1") {
		t.Error("expected user-1 disconnected after last socket closed")
	}
}

func TestHub_EmitReachesWholeRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = newTestClient(hub, "room-1", "user-"+string(rune('1'+i)))
		hub.register <- clients[i]
	}
	outsider := newTestClient(hub, "room-2", "user-9")
	hub.register <- outsider
	time.Sleep(10 * time.Millisecond)

	hub.Emit("room-1", "system", map[string]any{"text": "hello"})
	time.Sleep(10 * time.Millisecond)

	for i, client := range clients {
		select {
		case envelope := <-client.send:
			if envelope.Event != "system" {
				t.Errorf("client %d: expected system event, got %q", i, envelope.Event)
			}
			if envelope.Type != ServerTypeEvent {
				t.Errorf("client %d: expected type event, got %q", i, envelope.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d: did not receive broadcast", i)
		}
	}

	select {
	case <-outsider.send:
		t.Error("room-2 client should not receive room-1 broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EmitToUserTargetsOneUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	target := newTestClient(hub, "room-1", "user-1")
	other := newTestClient(hub, "room-1", "user-2")
	hub.register <- target
	hub.register <- other
	time.Sleep(10 * time.Millisecond)

	hub.EmitToUser("user-1", "role_assigned", map[string]any{"role": "sheriff"})
	time.Sleep(10 * time.Millisecond)

	select {
	case envelope := <-target.send:
		if envelope.Event != "role_assigned" {
			t.Errorf("expected role_assigned, got %q", envelope.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("target did not receive private event")
	}

	select {
	case <-other.send:
		t.Error("other user should not receive user-1's private event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EmitToUsersScopedList(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, "room-1", "user-a")
	b := newTestClient(hub, "room-1", "user-b")
	c := newTestClient(hub, "room-1", "user-c")
	for _, client := range []*Client{a, b, c} {
		hub.register <- client
	}
	time.Sleep(10 * time.Millisecond)

	envelope := &ServerEnvelope{Type: ServerTypeEvent, Event: "chat", Payload: map[string]any{"message": "psst"}}
	hub.EmitToUsers([]string{"user-a", "user-b"}, envelope, a)
	time.Sleep(10 * time.Millisecond)

	select {
	case got := <-b.send:
		if got.Event != "chat" {
			t.Errorf("expected chat, got %q", got.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("user-b did not receive scoped message")
	}

	// Sender was excluded, user-c was not in the list.
	select {
	case <-a.send:
		t.Error("excluded sender should not receive the message")
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case <-c.send:
		t.Error("user-c should not receive the scoped message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EmptyRoomEmit(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	hub.Emit("non-existent-room", "system", map[string]any{"text": "nobody home"})
	time.Sleep(10 * time.Millisecond)

	if count := hub.RoomClientCount("non-existent-room"); count != 0 {
		t.Errorf("expected 0 clients in non-existent room, got %d", count)
	}
}

func TestHub_ConcurrentRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	clients := make([]*Client, 10)
	for i := 0; i < 10; i++ {
		clients[i] = newTestClient(hub, "room-1", "user-"+string(rune('1'+i)))
		go func(c *Client) {
			hub.register <- c
		}(clients[i])
	}

	time.Sleep(50 * time.Millisecond)

	if count := hub.RoomClientCount("room-1"); count != 10 {
		t.Errorf("expected 10 clients in room, got %d", count)
	}
}
