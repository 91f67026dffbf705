package session

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/vntrieu/mafia/internal/game"
	"github.com/vntrieu/mafia/internal/store"
)

var (
	ErrWrongPassword = errors.New("wrong room password")
)

// InitialBalance is granted to a wallet the first time its owner joins.
const InitialBalance = 1000

const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const roomCodeLength = 6

// Manager owns the actor registry. It routes typed calls to the right room
// actor, creating rooms and lazily resurrecting actors for rooms that only
// exist in the session store (after a restart).
type Manager struct {
	sessions *store.SessionStore
	wallet   store.Wallet
	emitter  Emitter

	mu     sync.Mutex
	actors map[string]*Actor
}

func NewManager(sessions *store.SessionStore, wallet store.Wallet) *Manager {
	return &Manager{
		sessions: sessions,
		wallet:   wallet,
		emitter:  noopEmitter{},
		actors:   make(map[string]*Actor),
	}
}

// SetEmitter wires the outbound transport. Must be called before any room
// starts emitting; the websocket hub and the manager depend on each other, so
// this breaks the construction cycle.
func (m *Manager) SetEmitter(e Emitter) {
	m.emitter = e
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actors {
		a.emitter = e
	}
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, string, map[string]any)       {}
func (noopEmitter) EmitToUser(string, string, map[string]any) {}

// CreateRoom allocates a join code, seats the host, and spins up the actor.
// The password is optional; when set it is stored as a bcrypt hash.
func (m *Manager) CreateRoom(ctx context.Context, hostID, hostname, password string, opts game.Options) (*game.Room, error) {
	code, err := generateRoomCode()
	if err != nil {
		return nil, err
	}
	room := &game.Room{
		ID:     code,
		HostID: hostID,
		Status: game.RoomWaiting,
		Seats: []game.Seat{
			{UserID: hostID, Username: hostname, Level: 1},
		},
		Options: opts,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		room.PasswordHash = string(hash)
	}
	if err := m.wallet.Ensure(ctx, hostID, InitialBalance); err != nil {
		return nil, err
	}
	if err := m.sessions.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	m.mu.Lock()
	a := newActor(m, room, nil)
	m.actors[room.ID] = a
	m.mu.Unlock()
	go a.Run()
	return room, nil
}

// JoinRoom checks the password, grants the joiner a wallet, and seats them
// through the room's actor.
func (m *Manager) JoinRoom(ctx context.Context, roomID, userID, username, password string) (*game.Room, error) {
	a, err := m.actor(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if a.room.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(a.room.PasswordHash), []byte(password)) != nil {
			return nil, ErrWrongPassword
		}
	}
	if err := m.wallet.Ensure(ctx, userID, InitialBalance); err != nil {
		return nil, err
	}
	resp := a.send(command{kind: cmdJoin, userID: userID, username: username})
	if resp.err != nil {
		return nil, resp.err
	}
	return a.room, nil
}

// Room returns the lobby record for a code, resurrecting the actor if needed.
func (m *Manager) Room(ctx context.Context, roomID string) (*game.Room, error) {
	a, err := m.actor(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return a.room, nil
}

func (m *Manager) ToggleReady(ctx context.Context, roomID, userID string) error {
	return m.dispatch(ctx, roomID, command{kind: cmdReady, userID: userID})
}

func (m *Manager) StartGame(ctx context.Context, roomID, userID string) error {
	return m.dispatch(ctx, roomID, command{kind: cmdStartGame, userID: userID})
}

func (m *Manager) NightAction(ctx context.Context, roomID, userID string, action game.Action) error {
	return m.dispatch(ctx, roomID, command{kind: cmdNightAction, userID: userID, action: action})
}

func (m *Manager) Vote(ctx context.Context, roomID, userID, target string) error {
	return m.dispatch(ctx, roomID, command{kind: cmdVote, userID: userID, target: target})
}

func (m *Manager) PlaceBet(ctx context.Context, roomID, userID string, faction game.Faction, amount int64) error {
	return m.dispatch(ctx, roomID, command{kind: cmdBet, userID: userID, faction: faction, amount: amount})
}

func (m *Manager) SaveLastWill(ctx context.Context, roomID, userID, text string) error {
	return m.dispatch(ctx, roomID, command{kind: cmdLastWill, userID: userID, text: text})
}

func (m *Manager) Leave(ctx context.Context, roomID, userID string) error {
	return m.dispatch(ctx, roomID, command{kind: cmdLeave, userID: userID})
}

func (m *Manager) Disconnected(ctx context.Context, roomID, userID string) {
	_ = m.dispatch(ctx, roomID, command{kind: cmdDisconnect, userID: userID})
}

func (m *Manager) Reconnected(ctx context.Context, roomID, userID string) {
	_ = m.dispatch(ctx, roomID, command{kind: cmdReconnect, userID: userID})
}

// Snapshot builds the redacted full-state view for one viewer, for the
// sync_state request after a reconnect.
func (m *Manager) Snapshot(ctx context.Context, roomID, userID string) (map[string]any, error) {
	a, err := m.actor(ctx, roomID)
	if err != nil {
		return nil, err
	}
	resp := a.send(command{kind: cmdSnapshot, userID: userID})
	return resp.payload, resp.err
}

// ChatRecipients resolves who may read a chat message on the given channel,
// or an error when the sender may not speak there.
func (m *Manager) ChatRecipients(ctx context.Context, roomID, userID, channel string) ([]string, error) {
	a, err := m.actor(ctx, roomID)
	if err != nil {
		return nil, err
	}
	resp := a.send(command{kind: cmdChatRecipients, userID: userID, channel: channel})
	return resp.users, resp.err
}

func (m *Manager) dispatch(ctx context.Context, roomID string, cmd command) error {
	a, err := m.actor(ctx, roomID)
	if err != nil {
		return err
	}
	return a.send(cmd).err
}

// actor returns the running actor for a room, loading the room (and any
// in-flight game) from the session store when no actor is live.
func (m *Manager) actor(ctx context.Context, roomID string) (*Actor, error) {
	m.mu.Lock()
	if a, ok := m.actors[roomID]; ok {
		m.mu.Unlock()
		return a, nil
	}
	m.mu.Unlock()

	room, err := m.sessions.LoadRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	state, err := m.sessions.LoadGame(ctx, roomID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actors[roomID]; ok { // lost the race
		return a, nil
	}
	a := newActor(m, room, state)
	m.actors[roomID] = a
	go a.Run()
	return a, nil
}

func (m *Manager) remove(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.actors, roomID)
}

// Shutdown stops every actor; in-flight games stay in the session store and
// are resurrected on the next dispatch after restart.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.actors {
		a.Stop()
		delete(m.actors, id)
	}
}

func generateRoomCode() (string, error) {
	code := make([]byte, roomCodeLength)
	for i := range code {
		idx, err := game.RandomIndex(len(roomCodeAlphabet))
		if err != nil {
			return "", err
		}
		code[i] = roomCodeAlphabet[idx]
	}
	return string(code), nil
}
