package session

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/vntrieu/mafia/internal/game"
	"github.com/vntrieu/mafia/internal/store"
)

// Emitter is the abstract transport the surrounding system supplies: room
// broadcast and single-participant delivery. Delivery is at-least-once;
// clients handle events idempotently.
type Emitter interface {
	Emit(roomID, eventType string, payload map[string]any)
	EmitToUser(userID, eventType string, payload map[string]any)
}

// Scheduling and wager constants.
const (
	TickInterval = time.Second

	DefaultRoleDistributionSeconds = 10
	DefaultNightSeconds            = 60
	DefaultDiscussionSeconds       = 120
	DefaultVotingSeconds           = 60

	EndGameResetDelay = 15 * time.Second
	DisconnectGrace   = 60 * time.Second

	MinBet = 10
	MaxBet = 1000
)

// Actor owns one room: its lobby record, its game state, its clock, and its
// disconnect timers. Every command and every tick is a message on its
// mailbox, so state is only ever touched from one goroutine. Persistence
// still goes through the session store on every mutation, and outcome events
// are only published after the write succeeds.
type Actor struct {
	roomID   string
	manager  *Manager
	sessions *store.SessionStore
	wallet   store.Wallet
	emitter  Emitter

	room  *game.Room
	state *game.GameState

	commands chan command
	stop     chan struct{}

	// grace holds the cancellable disconnect timers, torn down with the actor.
	grace      map[string]*time.Timer
	resetTimer *time.Timer
}

func newActor(m *Manager, room *game.Room, state *game.GameState) *Actor {
	return &Actor{
		roomID:   room.ID,
		manager:  m,
		sessions: m.sessions,
		wallet:   m.wallet,
		emitter:  m.emitter,
		room:     room,
		state:    state,
		commands: make(chan command, 64),
		stop:     make(chan struct{}),
		grace:    make(map[string]*time.Timer),
	}
}

// Run is the actor's single-writer loop.
func (a *Actor) Run() {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			a.teardown()
			return
		case <-ticker.C:
			a.onTick(context.Background())
		case cmd := <-a.commands:
			a.handle(context.Background(), cmd)
		}
	}
}

// Stop shuts the actor down; pending grace timers are cancelled.
func (a *Actor) Stop() {
	close(a.stop)
}

func (a *Actor) teardown() {
	for userID, t := range a.grace {
		t.Stop()
		delete(a.grace, userID)
	}
	if a.resetTimer != nil {
		a.resetTimer.Stop()
	}
}

// send puts a command on the mailbox and waits for the actor's answer.
func (a *Actor) send(cmd command) response {
	cmd.reply = make(chan response, 1)
	select {
	case a.commands <- cmd:
	case <-a.stop:
		return response{err: ErrRoomNotFound}
	}
	select {
	case resp := <-cmd.reply:
		return resp
	case <-a.stop:
		return response{err: ErrRoomNotFound}
	}
}

// enqueue is for timer callbacks: fire-and-forget, never blocks the timer
// goroutine on a stopped actor.
func (a *Actor) enqueue(cmd command) {
	select {
	case a.commands <- cmd:
	case <-a.stop:
	}
}

func (a *Actor) handle(ctx context.Context, cmd command) {
	var resp response
	switch cmd.kind {
	case cmdJoin:
		resp.err = a.join(ctx, cmd.userID, cmd.username)
	case cmdReady:
		resp.err = a.toggleReady(ctx, cmd.userID)
	case cmdStartGame:
		resp.err = a.startGame(ctx, cmd.userID)
	case cmdNightAction:
		resp.err = a.nightAction(ctx, cmd.userID, cmd.action)
	case cmdVote:
		resp.err = a.vote(ctx, cmd.userID, cmd.target)
	case cmdBet:
		resp.err = a.bet(ctx, cmd.userID, cmd.faction, cmd.amount)
	case cmdLastWill:
		resp.err = a.saveLastWill(ctx, cmd.userID, cmd.text)
	case cmdLeave:
		resp.err = a.leave(ctx, cmd.userID)
	case cmdDisconnect:
		a.disconnected(cmd.userID)
	case cmdReconnect:
		a.reconnected(cmd.userID)
	case cmdGraceExpired:
		a.graceExpired(ctx, cmd.userID)
	case cmdResetLobby:
		a.resetLobby(ctx)
	case cmdSnapshot:
		resp.payload, resp.err = a.snapshot(cmd.userID)
	case cmdChatRecipients:
		resp.users, resp.err = a.chatRecipients(cmd.userID, cmd.channel)
	}
	if cmd.reply != nil {
		cmd.reply <- resp
	}
}

// onTick decrements the countdown and fires the next transition when it
// reaches zero. Nothing ticks in the lobby or after the game has ended.
func (a *Actor) onTick(ctx context.Context) {
	if a.state == nil || a.state.Phase == game.PhaseEndGame {
		return
	}
	a.state.CountdownMS -= TickInterval.Milliseconds()
	if a.state.CountdownMS > 0 {
		if err := a.sessions.SaveGame(ctx, a.state); err != nil {
			log.Printf("session tick: room_id=%s persist failed: %v", a.roomID, err)
			return
		}
		a.emitter.Emit(a.roomID, game.EventTick, map[string]any{
			"phase": string(a.state.Phase), "countdown_ms": a.state.CountdownMS,
		})
		return
	}
	a.advance(ctx)
}

// advance resolves the ending phase and enters the next one. Resolution runs
// to completion, including persistence, before any outcome is published.
func (a *Actor) advance(ctx context.Context) {
	switch a.state.Phase {
	case game.PhaseRoleDistribution:
		a.enterPhase(ctx, game.PhaseNight, nil)
	case game.PhaseNight:
		events := game.ResolveNight(a.state)
		if a.finishIfOver(ctx, events) {
			return
		}
		a.enterPhase(ctx, game.PhaseDayDiscussion, events)
	case game.PhaseDayDiscussion:
		a.enterPhase(ctx, game.PhaseDayVoting, nil)
	case game.PhaseDayVoting:
		events := game.ResolveVoting(a.state)
		if a.finishIfOver(ctx, events) {
			return
		}
		a.state.Day++
		a.enterPhase(ctx, game.PhaseNight, events)
	}
}

func (a *Actor) phaseCountdown(phase game.Phase) int64 {
	seconds := 0
	switch phase {
	case game.PhaseRoleDistribution:
		seconds = DefaultRoleDistributionSeconds
	case game.PhaseNight:
		seconds = a.state.Options.NightSeconds
		if seconds <= 0 {
			seconds = DefaultNightSeconds
		}
	case game.PhaseDayDiscussion:
		seconds = a.state.Options.DiscussionSeconds
		if seconds <= 0 {
			seconds = DefaultDiscussionSeconds
		}
	case game.PhaseDayVoting:
		seconds = a.state.Options.VotingSeconds
		if seconds <= 0 {
			seconds = DefaultVotingSeconds
		}
	}
	return int64(seconds) * 1000
}

func phaseNarrative(phase game.Phase) string {
	switch phase {
	case game.PhaseNight:
		return "Night falls. The town sleeps, but some are awake."
	case game.PhaseDayDiscussion:
		return "The sun rises. Discuss what happened in the night."
	case game.PhaseDayVoting:
		return "Time to vote. Who is guilty?"
	default:
		return ""
	}
}

// enterPhase switches the state machine, persists, and only then publishes
// the carried resolution events followed by the phase change.
func (a *Actor) enterPhase(ctx context.Context, phase game.Phase, carried []game.Event) {
	a.state.Phase = phase
	a.state.CountdownMS = a.phaseCountdown(phase)
	narrative := phaseNarrative(phase)
	if narrative != "" {
		a.state.AppendLog(narrative)
	}
	if err := a.sessions.SaveGame(ctx, a.state); err != nil {
		log.Printf("session: room_id=%s phase=%s persist failed: %v", a.roomID, phase, err)
		return
	}
	a.publish(carried)
	a.emitter.Emit(a.roomID, game.EventPhaseChanged, map[string]any{
		"phase": string(phase), "countdown_ms": a.state.CountdownMS, "day": a.state.Day,
	})
	if narrative != "" {
		a.emitter.Emit(a.roomID, game.EventSystem, map[string]any{"text": narrative})
	}
}

// finishIfOver checks the win condition (unless a jester already decided the
// game) and, when the game is over, settles bets exactly once, persists, and
// publishes the ending.
func (a *Actor) finishIfOver(ctx context.Context, carried []game.Event) bool {
	if a.state.Winner == "" {
		winner, over := game.EvaluateWin(a.state)
		if !over {
			return false
		}
		a.state.Winner = winner
	}
	a.state.Phase = game.PhaseEndGame
	a.state.CountdownMS = 0
	a.state.AppendLog(fmt.Sprintf("The game is over. Winner: %s.", a.state.Winner))

	betEvents := a.settleBets(ctx)

	if err := a.sessions.SaveGame(ctx, a.state); err != nil {
		log.Printf("session: room_id=%s end persist failed: %v", a.roomID, err)
	}

	a.publish(carried)
	a.emitter.Emit(a.roomID, game.EventGameEnded, map[string]any{
		"winner": a.state.Winner, "log": a.state.Log,
	})
	a.publish(betEvents)

	a.resetTimer = time.AfterFunc(EndGameResetDelay, func() {
		a.enqueue(command{kind: cmdResetLobby})
	})
	return true
}

// settleBets pays winning bettors double their stake. Guarded by the
// BetsSettled flag so the settlement can never run twice for one game.
func (a *Actor) settleBets(ctx context.Context) []game.Event {
	if a.state.BetsSettled {
		return nil
	}
	a.state.BetsSettled = true

	winning, payout := game.WinningFaction(a.state.Winner)
	events := []game.Event{}
	for _, p := range a.state.Players {
		bet, ok := a.state.Bets[p.UserID]
		if !ok {
			continue
		}
		won := payout && bet.Faction == winning
		if won {
			if err := a.wallet.Credit(ctx, p.UserID, bet.Amount*2); err != nil {
				log.Printf("session: room_id=%s bet payout user_id=%s failed: %v", a.roomID, p.UserID, err)
				continue
			}
		}
		text := fmt.Sprintf("Your bet on %s lost.", bet.Faction)
		if won {
			text = fmt.Sprintf("Your bet on %s won! You receive %d.", bet.Faction, bet.Amount*2)
		}
		events = append(events, game.Private(p.UserID, game.EventBetResult, map[string]any{
			"faction": string(bet.Faction), "amount": bet.Amount, "won": won, "text": text,
		}))
	}
	return events
}

// resetLobby runs after the end-game delay: seats un-ready, game state gone.
func (a *Actor) resetLobby(ctx context.Context) {
	if a.state == nil || a.state.Phase != game.PhaseEndGame {
		return
	}
	a.state = nil
	a.room.ResetToLobby()
	if err := a.sessions.SaveRoom(ctx, a.room); err != nil {
		log.Printf("session: room_id=%s lobby reset persist failed: %v", a.roomID, err)
		return
	}
	if err := a.sessions.DeleteGame(ctx, a.roomID); err != nil {
		log.Printf("session: room_id=%s game delete failed: %v", a.roomID, err)
	}
	a.emitter.Emit(a.roomID, game.EventRoomUpdated, roomPayload(a.room))
	a.emitter.Emit(a.roomID, game.EventSystem, map[string]any{"text": "The room is back in the lobby."})
}

// join seats a player in the lobby, or attaches them as a spectator when the
// game is already running.
func (a *Actor) join(ctx context.Context, userID, username string) error {
	if seat := a.room.Seat(userID); seat != nil {
		return nil // rejoin after disconnect
	}
	a.room.Seats = append(a.room.Seats, game.Seat{UserID: userID, Username: username, Level: 1})
	if err := a.sessions.SaveRoom(ctx, a.room); err != nil {
		return err
	}
	if a.state != nil {
		a.state.Players = append(a.state.Players, &game.PlayerState{
			UserID: userID, Username: username, Spectator: true,
		})
		if err := a.sessions.SaveGame(ctx, a.state); err != nil {
			return err
		}
	}
	a.emitter.Emit(a.roomID, game.EventRoomUpdated, roomPayload(a.room))
	return nil
}

func (a *Actor) toggleReady(ctx context.Context, userID string) error {
	if a.room.Status != game.RoomWaiting {
		return ErrAlreadyRunning
	}
	seat := a.room.Seat(userID)
	if seat == nil {
		return ErrNotSeated
	}
	seat.Ready = !seat.Ready
	if err := a.sessions.SaveRoom(ctx, a.room); err != nil {
		return err
	}
	a.emitter.Emit(a.roomID, game.EventRoomUpdated, roomPayload(a.room))
	return nil
}

func (a *Actor) startGame(ctx context.Context, userID string) error {
	if a.room.Status != game.RoomWaiting {
		return ErrAlreadyRunning
	}
	if userID != a.room.HostID {
		return ErrNotHost
	}
	if len(a.room.Seats) < game.MinPlayers {
		return ErrNotEnoughPlayers
	}
	if !a.room.AllReady() {
		return ErrNotAllReady
	}

	state := game.NewGameState(a.roomID, a.room.Seats, a.room.Options)
	if err := state.AssignRoles(); err != nil {
		return err // configuration error: room stays in the lobby
	}
	state.CountdownMS = int64(DefaultRoleDistributionSeconds) * 1000

	a.room.Status = game.RoomInProgress
	if err := a.sessions.SaveRoom(ctx, a.room); err != nil {
		return err
	}
	if err := a.sessions.SaveGame(ctx, state); err != nil {
		return err
	}
	a.state = state

	a.emitter.Emit(a.roomID, game.EventPhaseChanged, map[string]any{
		"phase": string(state.Phase), "countdown_ms": state.CountdownMS, "day": state.Day,
	})
	a.emitter.Emit(a.roomID, game.EventSystem, map[string]any{"text": "The game begins. Roles are being dealt."})
	a.publish(roleReveals(state))
	return nil
}

// roleReveals builds the private role notifications: everyone learns their
// own role, mafia members learn each other, lovers learn their partner.
func roleReveals(s *game.GameState) []game.Event {
	mafia := []string{}
	for _, p := range s.Players {
		if p.Role.MafiaAligned() {
			mafia = append(mafia, p.Username)
		}
	}
	events := make([]game.Event, 0, len(s.Players))
	for _, p := range s.Players {
		payload := map[string]any{"role": string(p.Role)}
		if p.Role.MafiaAligned() {
			payload["teammates"] = mafia
		}
		if p.LoverID != "" {
			if partner := s.Player(p.LoverID); partner != nil {
				payload["lover"] = partner.Username
			}
		}
		events = append(events, game.Private(p.UserID, game.EventRoleAssigned, payload))
	}
	return events
}

func (a *Actor) nightAction(ctx context.Context, userID string, action game.Action) error {
	if a.state == nil || a.state.Phase != game.PhaseNight {
		return ErrWrongPhase
	}
	actor := a.state.Player(userID)
	if actor == nil {
		return ErrNotSeated
	}
	if !actor.Alive || actor.Spectator {
		return ErrNotAlive
	}
	if !actor.Role.CanPerform(action.Type) {
		return ErrRoleCannotAct
	}
	if err := a.validateTarget(userID, action.TargetID); err != nil {
		return err
	}
	if action.Type == game.ActionCompare {
		if err := a.validateTarget(userID, action.SecondTargetID); err != nil {
			return err
		}
		if action.SecondTargetID == action.TargetID {
			return ErrInvalidTarget
		}
	} else {
		action.SecondTargetID = ""
	}

	// The mafia kill and the don check are shared consensus slots.
	switch {
	case action.Type == game.ActionKill && actor.Role.MafiaAligned():
		a.state.Night.MafiaKill = action.TargetID
	case action.Type == game.ActionDonCheck:
		a.state.Night.DonCheck = action.TargetID
	default:
		a.state.Night.Set(userID, action)
	}

	// Once everyone expected has acted, the night ends on the next tick.
	if a.state.Night.Received() >= a.state.ExpectedNightActions() {
		a.state.CountdownMS = 0
	}
	return a.sessions.SaveGame(ctx, a.state)
}

func (a *Actor) validateTarget(actorID, targetID string) error {
	if targetID == actorID {
		return ErrSelfTarget
	}
	target := a.state.Player(targetID)
	if target == nil || !target.Alive || target.Spectator {
		return ErrInvalidTarget
	}
	return nil
}

func (a *Actor) vote(ctx context.Context, userID, target string) error {
	if a.state == nil || a.state.Phase != game.PhaseDayVoting {
		return ErrWrongPhase
	}
	voter := a.state.Player(userID)
	if voter == nil {
		return ErrNotSeated
	}
	if !voter.Alive || voter.Spectator {
		return ErrNotAlive
	}
	if target != game.VoteSkip {
		t := a.state.Player(target)
		if t == nil || !t.Alive || t.Spectator {
			return ErrInvalidTarget
		}
	}
	if a.state.Votes == nil {
		a.state.Votes = make(map[string]string)
	}
	a.state.Votes[userID] = target
	if err := a.sessions.SaveGame(ctx, a.state); err != nil {
		return err
	}
	a.emitter.Emit(a.roomID, game.EventVoteRecorded, map[string]any{
		"voter": userID, "target": target,
	})
	return nil
}

func (a *Actor) bet(ctx context.Context, userID string, faction game.Faction, amount int64) error {
	if a.state == nil || a.state.Phase == game.PhaseEndGame {
		return ErrWrongPhase
	}
	p := a.state.Player(userID)
	if p == nil {
		return ErrNotSeated
	}
	if p.Alive && !p.Spectator {
		return ErrLivingBettor
	}
	if _, exists := a.state.Bets[userID]; exists {
		return ErrAlreadyBet
	}
	if amount < MinBet || amount > MaxBet {
		return ErrBetAmount
	}
	switch faction {
	case game.FactionCivilians, game.FactionMafia, game.FactionManiac:
	default:
		return ErrBetFaction
	}
	// The stake leaves the wallet atomically at bet time.
	if err := a.wallet.Debit(ctx, userID, amount); err != nil {
		return err
	}
	if a.state.Bets == nil {
		a.state.Bets = make(map[string]game.Bet)
	}
	a.state.Bets[userID] = game.Bet{Faction: faction, Amount: amount}
	if err := a.sessions.SaveGame(ctx, a.state); err != nil {
		return err
	}
	a.emitter.EmitToUser(userID, game.EventBetPlaced, map[string]any{
		"faction": string(faction), "amount": amount,
	})
	return nil
}

func (a *Actor) saveLastWill(ctx context.Context, userID, text string) error {
	if a.state == nil || a.state.Phase == game.PhaseEndGame {
		return ErrWrongPhase
	}
	p := a.state.Player(userID)
	if p == nil {
		return ErrNotSeated
	}
	if !p.Alive || p.Spectator {
		return ErrNotAlive
	}
	if utf8.RuneCountInString(text) > game.MaxLastWillLength {
		return ErrLastWillTooLong
	}
	p.LastWill = text
	return a.sessions.SaveGame(ctx, a.state)
}

func (a *Actor) leave(ctx context.Context, userID string) error {
	if !a.room.RemoveSeat(userID) {
		return ErrNotSeated
	}
	if t, ok := a.grace[userID]; ok {
		t.Stop()
		delete(a.grace, userID)
	}

	// Leaving mid-game is abandoning it.
	if a.state != nil {
		if p := a.state.Player(userID); p != nil && p.Alive && !p.Spectator {
			a.killAbandoned(ctx, p)
		}
	}

	if len(a.room.Seats) == 0 {
		a.destroyRoom(ctx)
		return nil
	}
	if userID == a.room.HostID {
		idx, err := game.RandomIndex(len(a.room.Seats))
		if err != nil {
			idx = 0
		}
		a.room.HostID = a.room.Seats[idx].UserID
	}
	if err := a.sessions.SaveRoom(ctx, a.room); err != nil {
		return err
	}
	a.emitter.Emit(a.roomID, game.EventRoomUpdated, roomPayload(a.room))
	return nil
}

func (a *Actor) destroyRoom(ctx context.Context) {
	if err := a.sessions.DeleteRoom(ctx, a.roomID); err != nil {
		log.Printf("session: room_id=%s room delete failed: %v", a.roomID, err)
	}
	if err := a.sessions.DeleteGame(ctx, a.roomID); err != nil {
		log.Printf("session: room_id=%s game delete failed: %v", a.roomID, err)
	}
	a.manager.remove(a.roomID)
	a.Stop()
}

// disconnected starts the 60 second grace timer. Starting it twice without a
// reconnect in between has no effect.
func (a *Actor) disconnected(userID string) {
	if a.state == nil {
		return
	}
	p := a.state.Player(userID)
	if p == nil || !p.Alive || p.Spectator {
		return
	}
	if _, running := a.grace[userID]; running {
		return
	}
	a.grace[userID] = time.AfterFunc(DisconnectGrace, func() {
		a.enqueue(command{kind: cmdGraceExpired, userID: userID})
	})
}

func (a *Actor) reconnected(userID string) {
	if t, ok := a.grace[userID]; ok {
		t.Stop()
		delete(a.grace, userID)
	}
}

func (a *Actor) graceExpired(ctx context.Context, userID string) {
	delete(a.grace, userID)
	if a.state == nil {
		return
	}
	p := a.state.Player(userID)
	if p == nil || !p.Alive || p.Spectator {
		return
	}
	a.killAbandoned(ctx, p)
}

// killAbandoned marks the player dead, re-runs the win evaluation, and keeps
// the night's early-end accounting honest.
func (a *Actor) killAbandoned(ctx context.Context, p *game.PlayerState) {
	p.Alive = false
	text := fmt.Sprintf("%s abandoned the game. They were the %s.", p.Username, p.Role)
	a.state.AppendLog(text)

	events := []game.Event{
		game.Public(game.EventSystem, map[string]any{"text": text}),
		game.Public(game.EventDeath, map[string]any{
			"user_id": p.UserID, "role": string(p.Role), "cause": "abandoned",
		}),
	}
	if a.finishIfOver(ctx, events) {
		return
	}
	if a.state.Phase == game.PhaseNight && a.state.Night.Received() >= a.state.ExpectedNightActions() {
		a.state.CountdownMS = 0
	}
	if err := a.sessions.SaveGame(ctx, a.state); err != nil {
		log.Printf("session: room_id=%s persist failed: %v", a.roomID, err)
		return
	}
	a.publish(events)
	a.emitter.Emit(a.roomID, game.EventPhaseChanged, map[string]any{
		"phase": string(a.state.Phase), "countdown_ms": a.state.CountdownMS, "day": a.state.Day,
	})
}

// snapshot builds a per-viewer state view: the living see only their own
// role; the dead and spectators see everything.
func (a *Actor) snapshot(userID string) (map[string]any, error) {
	payload := map[string]any{"room": roomPayload(a.room)}
	if a.state == nil {
		return payload, nil
	}
	viewer := a.state.Player(userID)
	seeAll := viewer != nil && (!viewer.Alive || viewer.Spectator)

	players := make([]map[string]any, 0, len(a.state.Players))
	for _, p := range a.state.Players {
		entry := map[string]any{
			"user_id":   p.UserID,
			"username":  p.Username,
			"alive":     p.Alive,
			"spectator": p.Spectator,
			"silenced":  p.Silenced,
		}
		if seeAll || p.UserID == userID || !p.Alive {
			entry["role"] = string(p.Role)
		}
		players = append(players, entry)
	}
	payload["phase"] = string(a.state.Phase)
	payload["countdown_ms"] = a.state.CountdownMS
	payload["day"] = a.state.Day
	payload["players"] = players
	payload["log"] = a.state.Log
	if a.state.Winner != "" {
		payload["winner"] = a.state.Winner
	}
	return payload, nil
}

// chatRecipients scopes the typed chat channels: general for everyone, mafia
// for the living mafia at night, dead for the graveyard and spectators.
func (a *Actor) chatRecipients(senderID, channel string) ([]string, error) {
	sender := a.room.Seat(senderID)
	if sender == nil {
		return nil, ErrNotSeated
	}
	if a.state == nil {
		if channel != ChatGeneral {
			return nil, ErrWrongPhase
		}
		users := make([]string, 0, len(a.room.Seats))
		for _, s := range a.room.Seats {
			users = append(users, s.UserID)
		}
		return users, nil
	}

	p := a.state.Player(senderID)
	if p == nil {
		return nil, ErrNotSeated
	}
	switch channel {
	case ChatGeneral:
		if !p.Alive || p.Spectator {
			return nil, ErrNotAlive
		}
		if p.Silenced {
			return nil, ErrSilenced
		}
		users := make([]string, 0, len(a.state.Players))
		for _, other := range a.state.Players {
			users = append(users, other.UserID)
		}
		return users, nil
	case ChatMafia:
		if !p.Alive || !p.Role.MafiaAligned() {
			return nil, ErrRoleCannotAct
		}
		users := []string{}
		for _, other := range a.state.Alive() {
			if other.Role.MafiaAligned() {
				users = append(users, other.UserID)
			}
		}
		return users, nil
	case ChatDead:
		if p.Alive && !p.Spectator {
			return nil, ErrNotAlive
		}
		users := []string{}
		for _, other := range a.state.Players {
			if !other.Alive || other.Spectator {
				users = append(users, other.UserID)
			}
		}
		return users, nil
	}
	return nil, ErrUnknownChannel
}

func (a *Actor) publish(events []game.Event) {
	for _, ev := range events {
		if ev.UserID != "" {
			a.emitter.EmitToUser(ev.UserID, ev.Type, ev.Payload)
			continue
		}
		a.emitter.Emit(a.roomID, ev.Type, ev.Payload)
	}
}

func roomPayload(r *game.Room) map[string]any {
	seats := make([]map[string]any, 0, len(r.Seats))
	for _, s := range r.Seats {
		seats = append(seats, map[string]any{
			"user_id": s.UserID, "username": s.Username, "ready": s.Ready, "level": s.Level,
		})
	}
	return map[string]any{
		"room_id": r.ID,
		"host_id": r.HostID,
		"status":  string(r.Status),
		"seats":   seats,
	}
}
