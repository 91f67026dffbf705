package session

import (
	"errors"

	"github.com/vntrieu/mafia/internal/game"
)

// Validation and authorization errors, reported synchronously to the calling
// client with no state mutation.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotSeated        = errors.New("player is not in this room")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("at least 4 seated players are required")
	ErrNotAllReady      = errors.New("not all players are ready")
	ErrAlreadyRunning   = errors.New("game already in progress")
	ErrWrongPhase       = errors.New("action not allowed in this phase")
	ErrNotAlive         = errors.New("dead players cannot do that")
	ErrRoleCannotAct    = errors.New("your role cannot perform this action")
	ErrSelfTarget       = errors.New("you cannot target yourself")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrLivingBettor     = errors.New("living players cannot bet")
	ErrAlreadyBet       = errors.New("you already placed a bet this game")
	ErrBetAmount        = errors.New("bet amount out of range")
	ErrBetFaction       = errors.New("unknown faction")
	ErrLastWillTooLong  = errors.New("last will is too long")
	ErrSilenced         = errors.New("you are silenced today")
	ErrUnknownChannel   = errors.New("unknown chat channel")
)

type commandKind int

const (
	cmdJoin commandKind = iota
	cmdReady
	cmdStartGame
	cmdNightAction
	cmdVote
	cmdBet
	cmdLastWill
	cmdLeave
	cmdDisconnect
	cmdReconnect
	cmdGraceExpired
	cmdResetLobby
	cmdSnapshot
	cmdChatRecipients
)

// Chat channels. General is the lobby and daytime channel, mafia is the
// night-time faction channel, dead is the graveyard plus spectators.
const (
	ChatGeneral = "general"
	ChatMafia   = "mafia"
	ChatDead    = "dead"
)

// command is one message on the actor's mailbox. The actor goroutine is the
// only writer of room and game state, so handling is free of locks.
type command struct {
	kind     commandKind
	userID   string
	username string
	action   game.Action
	target   string
	faction  game.Faction
	amount   int64
	text     string
	channel  string
	reply    chan response
}

type response struct {
	err     error
	payload map[string]any
	users   []string
}
