package websocket

import (
	"context"
	"log"
	"strings"

	"github.com/vntrieu/mafia/internal/game"
	"github.com/vntrieu/mafia/internal/ratelimit"
	"github.com/vntrieu/mafia/internal/session"
)

// MessageHandler translates inbound client envelopes into session manager
// calls and routes the answers back. The manager owns all game rules; this
// layer only decodes payloads and scopes chat delivery.
type MessageHandler struct {
	hub         *Hub
	manager     *session.Manager
	rateLimiter ratelimit.Limiter
}

// NewMessageHandler creates a new MessageHandler. rateLimiter is optional;
// when set, chat messages are rate-limited by client key (e.g. IP).
func NewMessageHandler(hub *Hub, manager *session.Manager, rateLimiter ratelimit.Limiter) *MessageHandler {
	return &MessageHandler{hub: hub, manager: manager, rateLimiter: rateLimiter}
}

// Handle processes one inbound message. Unknown or invalid message types get
// an error envelope back on the sending connection only.
func (h *MessageHandler) Handle(ctx context.Context, client *Client, msg *ClientMessage) {
	if msg == nil {
		sendErrorToClient(client, "", "invalid message")
		return
	}
	if len(msg.Type) > MaxClientMessageTypeLength || !ValidClientMessageTypes[msg.Type] {
		sendErrorToClient(client, msg.CorrelationID, "unsupported message type")
		return
	}

	var err error
	switch msg.Type {
	case ClientMessageTypeReady:
		err = h.manager.ToggleReady(ctx, client.RoomID, client.UserID)
	case ClientMessageTypeStartGame:
		err = h.manager.StartGame(ctx, client.RoomID, client.UserID)
	case ClientMessageTypeNightAction:
		err = h.manager.NightAction(ctx, client.RoomID, client.UserID, decodeAction(msg.Payload))
	case ClientMessageTypeVote:
		err = h.manager.Vote(ctx, client.RoomID, client.UserID, payloadString(msg.Payload, "target"))
	case ClientMessageTypeBet:
		faction := game.Faction(payloadString(msg.Payload, "faction"))
		err = h.manager.PlaceBet(ctx, client.RoomID, client.UserID, faction, payloadInt64(msg.Payload, "amount"))
	case ClientMessageTypeLastWill:
		err = h.manager.SaveLastWill(ctx, client.RoomID, client.UserID, payloadString(msg.Payload, "text"))
	case ClientMessageTypeChat:
		h.handleChat(ctx, client, msg)
		return
	case ClientMessageTypeSyncState:
		h.handleSyncState(ctx, client, msg)
		return
	case ClientMessageTypeLeave:
		err = h.manager.Leave(ctx, client.RoomID, client.UserID)
	}
	if err != nil {
		sendErrorToClient(client, msg.CorrelationID, err.Error())
	}
}

// handleSyncState sends the caller's redacted snapshot to them only.
func (h *MessageHandler) handleSyncState(ctx context.Context, client *Client, msg *ClientMessage) {
	snapshot, err := h.manager.Snapshot(ctx, client.RoomID, client.UserID)
	if err != nil {
		sendErrorToClient(client, msg.CorrelationID, err.Error())
		return
	}
	sendEnvelopeToClient(client, &ServerEnvelope{
		Type:          ServerTypeState,
		Event:         game.EventState,
		CorrelationID: msg.CorrelationID,
		Payload:       snapshot,
	})
}

// handleChat resolves the channel's recipient list through the manager and
// fans the message out to exactly those users.
func (h *MessageHandler) handleChat(ctx context.Context, client *Client, msg *ClientMessage) {
	if h.rateLimiter != nil && client.RateLimitKey != "" {
		allowed, _ := h.rateLimiter.Allow(client.RateLimitKey)
		if !allowed {
			sendErrorToClient(client, msg.CorrelationID, "rate limit exceeded; try again later")
			return
		}
	}
	text := strings.TrimSpace(payloadString(msg.Payload, "message"))
	text = trimToMax(text, MaxChatMessageLength)
	if text == "" {
		return
	}
	channel := payloadString(msg.Payload, "channel")
	if channel == "" {
		channel = session.ChatGeneral
	}
	recipients, err := h.manager.ChatRecipients(ctx, client.RoomID, client.UserID, channel)
	if err != nil {
		sendErrorToClient(client, msg.CorrelationID, err.Error())
		return
	}
	envelope := &ServerEnvelope{
		Type:  ServerTypeEvent,
		Event: game.EventChat,
		Payload: map[string]any{
			"channel":      channel,
			"display_name": client.DisplayName,
			"message":      text,
		},
	}
	h.hub.EmitToUsers(recipients, envelope, client)
}

// ClientGone runs when a connection's read loop exits. If it was the user's
// last connection, the session layer starts the disconnect grace timer.
func (h *MessageHandler) ClientGone(ctx context.Context, client *Client) {
	if h.hub.UserConnected(client.UserID) {
		return
	}
	h.manager.Disconnected(ctx, client.RoomID, client.UserID)
	h.hub.Emit(client.RoomID, game.EventSystem, map[string]any{
		"text": client.DisplayName + " lost connection.",
	})
}

// ClientBack runs on registration; it cancels any pending grace timer.
func (h *MessageHandler) ClientBack(ctx context.Context, client *Client) {
	h.manager.Reconnected(ctx, client.RoomID, client.UserID)
}

func decodeAction(payload map[string]any) game.Action {
	p := payload
	if p == nil {
		p = map[string]any{}
	}
	return game.Action{
		Type:           game.ActionType(payloadString(p, "action")),
		TargetID:       payloadString(p, "target"),
		SecondTargetID: payloadString(p, "second_target"),
	}
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

func payloadInt64(payload map[string]any, key string) int64 {
	if payload == nil {
		return 0
	}
	// JSON numbers arrive as float64.
	if f, ok := payload[key].(float64); ok {
		return int64(f)
	}
	return 0
}

func sendErrorToClient(client *Client, correlationID, message string) {
	sendEnvelopeToClient(client, &ServerEnvelope{
		Type:          ServerTypeError,
		CorrelationID: correlationID,
		Payload:       map[string]any{"message": message},
	})
}

func sendEnvelopeToClient(client *Client, envelope *ServerEnvelope) {
	select {
	case client.send <- envelope:
	default:
		log.Printf("could not send envelope to client (channel full)")
	}
}

func trimToMax(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
