package game

// ActionType identifies a hidden night action.
type ActionType string

const (
	ActionKill        ActionType = "kill"
	ActionDonCheck    ActionType = "don_check"
	ActionHeal        ActionType = "heal"
	ActionCheck       ActionType = "check"
	ActionSheriffKill ActionType = "sheriff_kill"
	ActionBlock       ActionType = "block"
	ActionSerialKill  ActionType = "serial_kill"
	ActionDefend      ActionType = "defend"
	ActionGuard       ActionType = "guard"
	ActionTrack       ActionType = "track"
	ActionInform      ActionType = "inform"
	ActionBomb        ActionType = "bomb"
	ActionTrap        ActionType = "trap"
	ActionSilence     ActionType = "silence"
	ActionCompare     ActionType = "compare"
)

// Action is one submitted night action. SecondTargetID is only set for
// compare, which takes a pair of targets.
type Action struct {
	Type           ActionType `json:"type"`
	TargetID       string     `json:"target_id"`
	SecondTargetID string     `json:"second_target_id,omitempty"`
}

// NightActions holds one night's submissions. The mafia kill and the don's
// check are single shared slots: every eligible submitter overwrites the same
// field, so the last write is the group's consensus. All other actions are
// keyed by actor.
type NightActions struct {
	MafiaKill  string            `json:"mafia_kill,omitempty"`
	DonCheck   string            `json:"don_check,omitempty"`
	Individual map[string]Action `json:"individual,omitempty"`
}

// Set records an individual action for the actor, replacing any earlier
// submission by the same actor this night.
func (n *NightActions) Set(actorID string, a Action) {
	if n.Individual == nil {
		n.Individual = make(map[string]Action)
	}
	n.Individual[actorID] = a
}

// Received counts how many expected night actions have arrived. Both shared
// slots count once no matter how many players wrote to them.
func (n *NightActions) Received() int {
	count := len(n.Individual)
	if n.MafiaKill != "" {
		count++
	}
	if n.DonCheck != "" {
		count++
	}
	return count
}

// Reset clears everything at the end of a night resolution.
func (n *NightActions) Reset() {
	n.MafiaKill = ""
	n.DonCheck = ""
	n.Individual = nil
}
