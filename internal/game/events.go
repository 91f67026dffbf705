package game

// Event types produced by the engine and the session layer. The transport is
// responsible for delivery; targets are a whole room or a single user.
const (
	EventState         = "state"
	EventTick          = "tick"
	EventPhaseChanged  = "phase_changed"
	EventSystem        = "system"
	EventRoleAssigned  = "role_assigned"
	EventActionResult  = "action_result"
	EventActionBlocked = "action_blocked"
	EventVoteRecorded  = "vote_recorded"
	EventDeath         = "death"
	EventGameEnded     = "game_ended"
	EventBetPlaced     = "bet_placed"
	EventBetResult     = "bet_result"
	EventRoomUpdated   = "room_updated"
	EventChat          = "chat"
)

// Event is one typed notification. UserID empty means broadcast to the room;
// otherwise delivery goes to that one participant wherever they are connected.
type Event struct {
	Type    string
	UserID  string
	Payload map[string]any
}

// Public builds a room-wide event.
func Public(eventType string, payload map[string]any) Event {
	return Event{Type: eventType, Payload: payload}
}

// Private builds an event for exactly one participant.
func Private(userID, eventType string, payload map[string]any) Event {
	return Event{Type: eventType, UserID: userID, Payload: payload}
}

// system builds a room-wide narrative message and is the only way resolution
// code emits prose; the same text is appended to the match log by callers.
func system(text string) Event {
	return Public(EventSystem, map[string]any{"text": text})
}
