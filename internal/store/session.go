package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vntrieu/mafia/internal/game"
)

// Default record lifetimes. A game abandoned mid-session expires on its own;
// the lobby record outlives the game so players can come back to the room.
const (
	DefaultGameTTL = 6 * time.Hour
	DefaultRoomTTL = 24 * time.Hour
)

// SessionStore persists rooms and game states as KV records with expiry.
// One game record per room at most, keyed by the room id.
type SessionStore struct {
	kv      KV
	GameTTL time.Duration
	RoomTTL time.Duration
}

// NewSessionStore wraps a KV with the default TTLs.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv, GameTTL: DefaultGameTTL, RoomTTL: DefaultRoomTTL}
}

func gameKey(roomID string) string { return "game:" + roomID }
func roomKey(roomID string) string { return "room:" + roomID }

// SaveGame persists the authoritative game state for a room.
func (s *SessionStore) SaveGame(ctx context.Context, state *game.GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal game state: %w", err)
	}
	return s.kv.Set(ctx, gameKey(state.RoomID), raw, s.GameTTL)
}

// LoadGame returns the game state for a room, or ErrNotFound.
func (s *SessionStore) LoadGame(ctx context.Context, roomID string) (*game.GameState, error) {
	raw, err := s.kv.Get(ctx, gameKey(roomID))
	if err != nil {
		return nil, err
	}
	var state game.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal game state: %w", err)
	}
	return &state, nil
}

// DeleteGame drops a room's game record.
func (s *SessionStore) DeleteGame(ctx context.Context, roomID string) error {
	return s.kv.Delete(ctx, gameKey(roomID))
}

// SaveRoom persists the lobby record.
func (s *SessionStore) SaveRoom(ctx context.Context, room *game.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}
	return s.kv.Set(ctx, roomKey(room.ID), raw, s.RoomTTL)
}

// LoadRoom returns the lobby record, or ErrNotFound.
func (s *SessionStore) LoadRoom(ctx context.Context, roomID string) (*game.Room, error) {
	raw, err := s.kv.Get(ctx, roomKey(roomID))
	if err != nil {
		return nil, err
	}
	var room game.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, fmt.Errorf("unmarshal room: %w", err)
	}
	return &room, nil
}

// DeleteRoom drops the lobby record.
func (s *SessionStore) DeleteRoom(ctx context.Context, roomID string) error {
	return s.kv.Delete(ctx, roomKey(roomID))
}
