package game

import "fmt"

// victim is one pending death with its narrative cause.
type victim struct {
	userID string
	cause  string
}

// ResolveNight resolves the full set of submitted night actions in the fixed
// priority order: control effects, blocking, defensive effects, lethal
// intents, lovers, investigations, deaths. It mutates the state in place and
// returns the events to publish once the new state has been persisted.
func ResolveNight(s *GameState) []Event {
	events := []Event{}
	pub := func(text string) {
		s.AppendLog(text)
		events = append(events, system(text))
	}

	// Last night's silence expires before a new one lands.
	for _, p := range s.Players {
		p.Silenced = false
	}

	acts := s.Night.Individual

	// 1. Control effects resolve first and unconditionally.
	var escortTarget, trapTarget, trapperID string
	for actor, a := range acts {
		switch a.Type {
		case ActionBlock:
			escortTarget = a.TargetID
		case ActionTrap:
			trapTarget = a.TargetID
			trapperID = actor
		case ActionSilence:
			if t := s.Player(a.TargetID); t != nil && t.Alive {
				t.Silenced = true
			}
		}
	}

	// 2. Blocked actors: the escort's target, and anyone whose visit landed
	// on the trapped player (the trapper's own action excepted). Their
	// actions are discarded and they learn only that they were stopped.
	blocked := map[string]bool{}
	for _, p := range s.Players {
		a, ok := acts[p.UserID]
		if !ok {
			continue
		}
		if p.UserID == escortTarget || (trapTarget != "" && a.TargetID == trapTarget && p.UserID != trapperID) {
			blocked[p.UserID] = true
			events = append(events, Private(p.UserID, EventActionBlocked, map[string]any{
				"text": "Your action was blocked tonight.",
			}))
		}
	}

	// 3. Defensive and disguise effects from the surviving actions.
	var defendTarget, guardTarget, bombTarget, bomberID string
	healed := map[string]bool{}
	for actor, a := range acts {
		if blocked[actor] {
			continue
		}
		switch a.Type {
		case ActionDefend:
			defendTarget = a.TargetID
		case ActionGuard:
			guardTarget = a.TargetID
		case ActionBomb:
			bombTarget = a.TargetID
			bomberID = actor
		case ActionHeal:
			healed[a.TargetID] = true
		}
	}

	// 4. Lethal intents. Mafia and maniac kills are evaluated independently;
	// both can land in the same night.
	victims := []victim{}
	addVictim := func(userID, cause string) {
		for _, v := range victims {
			if v.userID == userID {
				return
			}
		}
		victims = append(victims, victim{userID: userID, cause: cause})
	}
	name := func(userID string) string {
		if p := s.Player(userID); p != nil {
			return p.Username
		}
		return "someone"
	}

	killAttempt := false
	resolveKill := func(targetID, cause string) {
		killAttempt = true
		switch {
		case healed[targetID]:
			pub(fmt.Sprintf("%s was attacked in the night, but the doctor saved them.", name(targetID)))
		case guardTarget == targetID:
			pub(fmt.Sprintf("An attempt on %s's life was foiled.", name(targetID)))
		default:
			addVictim(targetID, cause)
		}
	}

	if s.Night.MafiaKill != "" {
		resolveKill(s.Night.MafiaKill, "killed by the mafia")
	}
	for _, p := range s.Players {
		a, ok := acts[p.UserID]
		if !ok || blocked[p.UserID] || a.Type != ActionSerialKill {
			continue
		}
		resolveKill(a.TargetID, "killed by the serial killer")
	}
	for _, p := range s.Players {
		actor := p.UserID
		a, ok := acts[actor]
		if !ok || blocked[actor] || a.Type != ActionSheriffKill {
			continue
		}
		dies := a.TargetID
		target := s.Player(a.TargetID)
		// A wrong shot kills the sheriff instead of the target.
		if target != nil && target.Role != RoleMafia && target.Role != RoleDon && target.Role != RoleSerialKiller {
			dies = actor
		}
		switch {
		case healed[dies]:
			pub(fmt.Sprintf("%s was attacked in the night, but the doctor saved them.", name(dies)))
		case guardTarget == dies:
			pub(fmt.Sprintf("An attempt on %s's life was foiled.", name(dies)))
		default:
			addVictim(dies, "shot by the sheriff")
		}
	}
	if bombTarget != "" {
		for _, p := range s.Players {
			a, ok := acts[p.UserID]
			if !ok || blocked[p.UserID] || p.UserID == bomberID {
				continue
			}
			if a.TargetID == bombTarget {
				addVictim(p.UserID, "killed by a bomb")
			}
		}
	}

	// 5. If either lover dies, the other follows.
	for i := 0; i < len(victims); i++ {
		p := s.Player(victims[i].userID)
		if p == nil || p.LoverID == "" {
			continue
		}
		if partner := s.Player(p.LoverID); partner != nil && partner.Alive {
			addVictim(partner.UserID, "died of a broken heart")
		}
	}

	// 6. Investigations never affect lethality and still reach actors who are
	// about to die.
	for _, p := range s.Players {
		actor := p.UserID
		a, ok := acts[actor]
		if !ok || blocked[actor] {
			continue
		}
		switch a.Type {
		case ActionCheck:
			verdict := "not mafia"
			target := s.Player(a.TargetID)
			if target != nil && target.Role.MafiaAligned() && a.TargetID != defendTarget {
				verdict = "mafia"
			}
			events = append(events, Private(actor, EventActionResult, map[string]any{
				"action": string(ActionCheck), "target": a.TargetID,
				"text": fmt.Sprintf("%s is %s.", name(a.TargetID), verdict),
			}))
		case ActionTrack:
			visited := "nobody"
			if ta, ok := acts[a.TargetID]; ok && !blocked[a.TargetID] {
				visited = name(ta.TargetID)
			}
			events = append(events, Private(actor, EventActionResult, map[string]any{
				"action": string(ActionTrack), "target": a.TargetID,
				"text": fmt.Sprintf("%s visited %s tonight.", name(a.TargetID), visited),
			}))
		case ActionInform:
			role := RoleCitizen
			if target := s.Player(a.TargetID); target != nil {
				role = target.Role
			}
			events = append(events, Private(actor, EventActionResult, map[string]any{
				"action": string(ActionInform), "target": a.TargetID,
				"text": fmt.Sprintf("%s is the %s.", name(a.TargetID), role),
			}))
		case ActionCompare:
			verdict := "different sides"
			if compareGroup(s.Player(a.TargetID)) == compareGroup(s.Player(a.SecondTargetID)) {
				verdict = "the same side"
			}
			events = append(events, Private(actor, EventActionResult, map[string]any{
				"action": string(ActionCompare), "targets": []string{a.TargetID, a.SecondTargetID},
				"text": fmt.Sprintf("%s and %s are on %s.", name(a.TargetID), name(a.SecondTargetID), verdict),
			}))
		}
	}
	if s.Night.DonCheck != "" {
		if don := firstAlive(s, RoleDon); don != nil {
			verdict := "not the sheriff"
			if target := s.Player(s.Night.DonCheck); target != nil && target.Role == RoleSheriff {
				verdict = "the sheriff"
			}
			events = append(events, Private(don.UserID, EventActionResult, map[string]any{
				"action": string(ActionDonCheck), "target": s.Night.DonCheck,
				"text": fmt.Sprintf("%s is %s.", name(s.Night.DonCheck), verdict),
			}))
		}
	}

	// 7. Apply deaths.
	died := 0
	for _, v := range victims {
		p := s.Player(v.userID)
		if p == nil || !p.Alive {
			continue
		}
		p.Alive = false
		died++
		pub(fmt.Sprintf("%s was %s. They were the %s.", p.Username, v.cause, p.Role))
		events = append(events, Public(EventDeath, map[string]any{
			"user_id": p.UserID, "role": string(p.Role), "cause": v.cause,
		}))
		if p.LastWill != "" {
			pub(fmt.Sprintf("Last will of %s: %s", p.Username, p.LastWill))
		}
	}

	// 8. Nothing happened at all.
	if died == 0 && !killAttempt {
		pub("The night passes quietly.")
	}

	// 9. Tonight's actions are spent.
	s.Night.Reset()
	return events
}

// compareGroup buckets a player for the journalist's comparison: mafia,
// maniac, jester, or citizen-aligned.
func compareGroup(p *PlayerState) string {
	if p == nil {
		return "citizens"
	}
	switch {
	case p.Role.MafiaAligned():
		return "mafia"
	case p.Role == RoleSerialKiller:
		return "maniac"
	case p.Role == RoleJester:
		return "jester"
	default:
		return "citizens"
	}
}

func firstAlive(s *GameState, r Role) *PlayerState {
	players := s.AliveWithRole(r)
	if len(players) == 0 {
		return nil
	}
	return players[0]
}
