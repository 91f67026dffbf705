package game

import (
	"fmt"
	"sort"
)

// ResolveVoting runs the end-of-day tally: the anti-AFK pre-step, the
// weighted count, the tie-break policy, and execution side effects. It
// mutates the state in place and returns the events to publish after the new
// state has been persisted. A jester execution sets Winner directly,
// bypassing the normal win evaluation.
func ResolveVoting(s *GameState) []Event {
	events := []Event{}
	pub := func(text string) {
		s.AppendLog(text)
		events = append(events, system(text))
	}

	// Anti-AFK: two consecutive silent voting rounds is a death sentence,
	// applied before the tally.
	for _, p := range s.Players {
		if !p.Alive || p.Spectator {
			continue
		}
		if _, voted := s.Votes[p.UserID]; voted {
			p.AFKPhases = 0
			continue
		}
		p.AFKPhases++
		if p.AFKPhases >= 2 {
			p.Alive = false
			pub(fmt.Sprintf("%s stopped responding and took their own life. They were the %s.", p.Username, p.Role))
			events = append(events, Public(EventDeath, map[string]any{
				"user_id": p.UserID, "role": string(p.Role), "cause": "inactivity",
			}))
		}
	}
	if len(s.Alive()) == 0 {
		s.Votes = make(map[string]string)
		return events
	}

	// Weighted tally. Votes from players who died before the tally still
	// count only if the voter is alive now; a ballot for a dead target is
	// discarded.
	totals := map[string]int{}
	cast := 0
	for voterID, targetID := range s.Votes {
		voter := s.Player(voterID)
		if voter == nil || !voter.Alive || voter.Spectator {
			continue
		}
		if targetID != VoteSkip {
			target := s.Player(targetID)
			if target == nil || !target.Alive {
				continue
			}
		}
		totals[targetID] += voter.Role.VoteWeight()
		cast++
	}
	s.Votes = make(map[string]string)

	if cast == 0 {
		pub("Nobody voted today. The town goes to sleep.")
		return events
	}

	// Strictly highest total wins; any tie at the maximum spares everyone.
	targets := make([]string, 0, len(totals))
	for t := range totals {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	best, bestWeight, tied := "", 0, false
	for _, t := range targets {
		switch {
		case totals[t] > bestWeight:
			best, bestWeight, tied = t, totals[t], false
		case totals[t] == bestWeight:
			tied = true
		}
	}
	if tied {
		pub("The vote is tied. Nobody is executed today.")
		return events
	}
	if best == VoteSkip {
		pub("The town votes to skip the execution.")
		return events
	}

	executed := s.Player(best)
	if executed == nil || !executed.Alive {
		pub("The vote is tied. Nobody is executed today.")
		return events
	}
	executed.Alive = false

	// A jester wants exactly this: being executed ends the game on the spot.
	if executed.Role == RoleJester {
		s.Winner = WinnerJester
		pub(fmt.Sprintf("%s was executed... and laughs from the gallows. The jester wins!", executed.Username))
		events = append(events, Public(EventDeath, map[string]any{
			"user_id": executed.UserID, "role": string(executed.Role), "cause": "executed",
		}))
		return events
	}

	pub(fmt.Sprintf("The town has executed %s. They were the %s.", executed.Username, executed.Role))
	events = append(events, Public(EventDeath, map[string]any{
		"user_id": executed.UserID, "role": string(executed.Role), "cause": "executed",
	}))
	if executed.LastWill != "" {
		pub(fmt.Sprintf("Last will of %s: %s", executed.Username, executed.LastWill))
	}
	if executed.LoverID != "" {
		if partner := s.Player(executed.LoverID); partner != nil && partner.Alive {
			partner.Alive = false
			pub(fmt.Sprintf("%s could not live without %s and followed them. They were the %s.",
				partner.Username, executed.Username, partner.Role))
			events = append(events, Public(EventDeath, map[string]any{
				"user_id": partner.UserID, "role": string(partner.Role), "cause": "died of a broken heart",
			}))
		}
	}
	return events
}
