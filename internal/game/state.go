package game

// Phase is one stage of the per-round state machine.
type Phase string

const (
	PhaseRoleDistribution Phase = "role_distribution"
	PhaseNight            Phase = "night"
	PhaseDayDiscussion    Phase = "day_discussion"
	PhaseDayVoting        Phase = "day_voting"
	PhaseEndGame          Phase = "end_game"
)

// VoteSkip is the sentinel vote target for abstaining without going AFK.
const VoteSkip = "skip"

// Winner values for a finished game.
const (
	WinnerCivilians = "civilians"
	WinnerMafia     = "mafia"
	WinnerManiac    = "maniac"
	WinnerJester    = "jester"
	WinnerDraw      = "draw"
)

// MaxLastWillLength caps last will text, in runes.
const MaxLastWillLength = 150

// PlayerState is one participant's authoritative in-game state.
type PlayerState struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      Role   `json:"role,omitempty"`
	Alive     bool   `json:"alive"`
	Spectator bool   `json:"spectator,omitempty"`
	Silenced  bool   `json:"silenced,omitempty"`
	LastWill  string `json:"last_will,omitempty"`
	// AFKPhases counts consecutive voting rounds without a ballot; reset on
	// any vote cast.
	AFKPhases int `json:"afk_phases,omitempty"`
	// LoverID links the two members of a lovers pair.
	LoverID string `json:"lover_id,omitempty"`
}

// Bet is a spectator/dead-player wager on the winning faction.
type Bet struct {
	Faction Faction `json:"faction"`
	Amount  int64   `json:"amount"`
}

// LogEntry is one append-only match log line, kept for post-game replay.
type LogEntry struct {
	Day   int    `json:"day"`
	Phase Phase  `json:"phase"`
	Text  string `json:"text"`
}

// GameState is the full authoritative state of one running session. Exactly
// one exists per room; it is owned by the room's actor and serialized as a
// single session-store record between ticks.
type GameState struct {
	RoomID      string         `json:"room_id"`
	Phase       Phase          `json:"phase"`
	Players     []*PlayerState `json:"players"`
	CountdownMS int64          `json:"countdown_ms"`
	Day         int            `json:"day"`
	Night       NightActions   `json:"night"`
	// Votes maps voter -> target user id, or VoteSkip.
	Votes map[string]string `json:"votes,omitempty"`
	// Bets persists for the rest of the game after settlement, for display.
	Bets        map[string]Bet `json:"bets,omitempty"`
	BetsSettled bool           `json:"bets_settled,omitempty"`
	Log         []LogEntry     `json:"log,omitempty"`
	Options     Options        `json:"options"`
	// Winner is set exactly once, when the game ends.
	Winner string `json:"winner,omitempty"`
}

// NewGameState builds the state for a room that just flipped to in-progress.
// Roles are not assigned yet; call AssignRoles before entering the night.
func NewGameState(roomID string, seats []Seat, opts Options) *GameState {
	players := make([]*PlayerState, 0, len(seats))
	for _, seat := range seats {
		players = append(players, &PlayerState{
			UserID:   seat.UserID,
			Username: seat.Username,
			Alive:    true,
		})
	}
	return &GameState{
		RoomID:  roomID,
		Phase:   PhaseRoleDistribution,
		Players: players,
		Day:     1,
		Votes:   make(map[string]string),
		Options: opts,
	}
}

// Player returns the player with the given user id, or nil.
func (s *GameState) Player(userID string) *PlayerState {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Alive returns the living non-spectator players in seat order.
func (s *GameState) Alive() []*PlayerState {
	out := make([]*PlayerState, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Alive && !p.Spectator {
			out = append(out, p)
		}
	}
	return out
}

// AliveWithRole returns living players holding the given role.
func (s *GameState) AliveWithRole(r Role) []*PlayerState {
	out := []*PlayerState{}
	for _, p := range s.Alive() {
		if p.Role == r {
			out = append(out, p)
		}
	}
	return out
}

// AppendLog records a public narrative line in the append-only match log.
func (s *GameState) AppendLog(text string) {
	s.Log = append(s.Log, LogEntry{Day: s.Day, Phase: s.Phase, Text: text})
}

// ExpectedNightActions counts how many distinct submissions end the night
// early. All living mafia-aligned players collapse into the single consensus
// kill; a living don additionally owes the don check.
func (s *GameState) ExpectedNightActions() int {
	expected := 0
	mafiaAlive := false
	for _, p := range s.Alive() {
		if p.Role.MafiaAligned() {
			mafiaAlive = true
			if p.Role == RoleDon {
				expected++ // don check
			}
			continue
		}
		if p.Role.HasNightAction() {
			expected++
		}
	}
	if mafiaAlive {
		expected++ // the shared kill slot
	}
	return expected
}
