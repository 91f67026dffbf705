package game

// RoomStatus is the lobby lifecycle state.
type RoomStatus string

const (
	RoomWaiting    RoomStatus = "waiting_lobby"
	RoomInProgress RoomStatus = "in_progress"
)

// MinPlayers is the smallest seated-and-ready count that can start a game.
const MinPlayers = 4

// Seat is one lobby slot.
type Seat struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Ready    bool   `json:"ready"`
	Level    int    `json:"level"`
}

// Options are the host-configurable room settings.
type Options struct {
	// Timer lengths in seconds; zero falls back to the phase default.
	NightSeconds      int `json:"night_seconds,omitempty"`
	DiscussionSeconds int `json:"discussion_seconds,omitempty"`
	VotingSeconds     int `json:"voting_seconds,omitempty"`
	// EnabledRoles lists the optional roles the host switched on.
	EnabledRoles []Role `json:"enabled_roles,omitempty"`
	// LoversEnabled adds the pair of linked lover slots.
	LoversEnabled bool `json:"lovers_enabled,omitempty"`
}

// RoleEnabled reports whether the host switched on the given optional role.
func (o Options) RoleEnabled(r Role) bool {
	for _, enabled := range o.EnabledRoles {
		if enabled == r {
			return true
		}
	}
	return false
}

// Room is the lobby-side record. It exists before and after a session; the
// session store keeps it on a longer TTL than the game state.
type Room struct {
	ID      string     `json:"id"` // the join code
	HostID  string     `json:"host_id"`
	Seats   []Seat     `json:"seats"`
	Status  RoomStatus `json:"status"`
	Options Options    `json:"options"`
	// PasswordHash is the bcrypt hash of the optional room password; empty
	// means the room is open.
	PasswordHash string `json:"password_hash,omitempty"`
}

// Seat returns the seat for a user, or nil.
func (r *Room) Seat(userID string) *Seat {
	for i := range r.Seats {
		if r.Seats[i].UserID == userID {
			return &r.Seats[i]
		}
	}
	return nil
}

// RemoveSeat drops a user's seat, preserving order. Returns false if the user
// was not seated.
func (r *Room) RemoveSeat(userID string) bool {
	for i := range r.Seats {
		if r.Seats[i].UserID == userID {
			r.Seats = append(r.Seats[:i], r.Seats[i+1:]...)
			return true
		}
	}
	return false
}

// AllReady reports whether every seat is readied.
func (r *Room) AllReady() bool {
	for _, s := range r.Seats {
		if !s.Ready {
			return false
		}
	}
	return len(r.Seats) > 0
}

// ResetToLobby un-readies every seat and flips the room back to waiting.
func (r *Room) ResetToLobby() {
	r.Status = RoomWaiting
	for i := range r.Seats {
		r.Seats[i].Ready = false
	}
}
