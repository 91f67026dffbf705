package websocket

// ClientMessage is the envelope for messages from client to server.
type ClientMessage struct {
	Type          string         `json:"type"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// ServerEnvelope is the envelope for messages from server to client.
// Type: "event" | "state" | "error"
type ServerEnvelope struct {
	Type          string         `json:"type"`
	Event         string         `json:"event,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// Client message types.
const (
	ClientMessageTypeReady       = "ready"
	ClientMessageTypeStartGame   = "start_game"
	ClientMessageTypeNightAction = "night_action"
	ClientMessageTypeVote        = "vote"
	ClientMessageTypeBet         = "bet"
	ClientMessageTypeLastWill    = "last_will"
	ClientMessageTypeChat        = "chat"
	ClientMessageTypeSyncState   = "sync_state"
	ClientMessageTypeLeave       = "leave"
)

// Server envelope types.
const (
	ServerTypeEvent = "event"
	ServerTypeState = "state"
	ServerTypeError = "error"
)

// MaxChatMessageLength is the maximum allowed length for a chat message.
const MaxChatMessageLength = 2000

// MaxClientMessageTypeLength limits the "type" field to prevent abuse.
const MaxClientMessageTypeLength = 64

// ValidClientMessageTypes are the only allowed values for ClientMessage.Type.
var ValidClientMessageTypes = map[string]bool{
	ClientMessageTypeReady:       true,
	ClientMessageTypeStartGame:   true,
	ClientMessageTypeNightAction: true,
	ClientMessageTypeVote:        true,
	ClientMessageTypeBet:         true,
	ClientMessageTypeLastWill:    true,
	ClientMessageTypeChat:        true,
	ClientMessageTypeSyncState:   true,
	ClientMessageTypeLeave:       true,
}
