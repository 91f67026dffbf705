package game

// Role is a player's secret role, assigned once at role distribution.
type Role string

const (
	RoleCitizen      Role = "citizen"
	RoleMafia        Role = "mafia"
	RoleDon          Role = "don"
	RoleSheriff      Role = "sheriff"
	RoleDoctor       Role = "doctor"
	RoleJester       Role = "jester"
	RoleEscort       Role = "escort"
	RoleSerialKiller Role = "serial_killer"
	RoleLawyer       Role = "lawyer"
	RoleBodyguard    Role = "bodyguard"
	RoleTracker      Role = "tracker"
	RoleInformer     Role = "informer"
	RoleMayor        Role = "mayor"
	RoleJudge        Role = "judge"
	RoleBomber       Role = "bomber"
	RoleTrapper      Role = "trapper"
	RoleSilencer     Role = "silencer"
	RoleJournalist   Role = "journalist"
	RoleLover        Role = "lover"
)

// Faction is a player's win-condition grouping.
type Faction string

const (
	FactionCivilians Faction = "civilians"
	FactionMafia     Faction = "mafia"
	FactionManiac    Faction = "maniac"
	FactionJester    Faction = "jester"
)

// Capability is the full set of things a role may do. Every role has an
// explicit entry; a role missing from the table behaves like a citizen.
type Capability struct {
	Faction      Faction
	NightActions []ActionType
	VoteWeight   int
}

var capabilities = map[Role]Capability{
	RoleCitizen:      {Faction: FactionCivilians, VoteWeight: 1},
	RoleMafia:        {Faction: FactionMafia, NightActions: []ActionType{ActionKill}, VoteWeight: 1},
	RoleDon:          {Faction: FactionMafia, NightActions: []ActionType{ActionKill, ActionDonCheck}, VoteWeight: 1},
	RoleSheriff:      {Faction: FactionCivilians, NightActions: []ActionType{ActionCheck, ActionSheriffKill}, VoteWeight: 1},
	RoleDoctor:       {Faction: FactionCivilians, NightActions: []ActionType{ActionHeal}, VoteWeight: 1},
	RoleJester:       {Faction: FactionJester, VoteWeight: 1},
	RoleEscort:       {Faction: FactionCivilians, NightActions: []ActionType{ActionBlock}, VoteWeight: 1},
	RoleSerialKiller: {Faction: FactionManiac, NightActions: []ActionType{ActionSerialKill}, VoteWeight: 1},
	RoleLawyer:       {Faction: FactionCivilians, NightActions: []ActionType{ActionDefend}, VoteWeight: 1},
	RoleBodyguard:    {Faction: FactionCivilians, NightActions: []ActionType{ActionGuard}, VoteWeight: 1},
	RoleTracker:      {Faction: FactionCivilians, NightActions: []ActionType{ActionTrack}, VoteWeight: 1},
	RoleInformer:     {Faction: FactionCivilians, NightActions: []ActionType{ActionInform}, VoteWeight: 1},
	RoleMayor:        {Faction: FactionCivilians, VoteWeight: 2},
	RoleJudge:        {Faction: FactionCivilians, VoteWeight: 3},
	RoleBomber:       {Faction: FactionCivilians, NightActions: []ActionType{ActionBomb}, VoteWeight: 1},
	RoleTrapper:      {Faction: FactionCivilians, NightActions: []ActionType{ActionTrap}, VoteWeight: 1},
	RoleSilencer:     {Faction: FactionCivilians, NightActions: []ActionType{ActionSilence}, VoteWeight: 1},
	RoleJournalist:   {Faction: FactionCivilians, NightActions: []ActionType{ActionCompare}, VoteWeight: 1},
	RoleLover:        {Faction: FactionCivilians, VoteWeight: 1},
}

// Capability returns the role's capability set. Unknown roles fall back to a
// plain citizen capability so a corrupt snapshot can never grant extra power.
func (r Role) Capability() Capability {
	if c, ok := capabilities[r]; ok {
		return c
	}
	return capabilities[RoleCitizen]
}

// Faction returns the role's win-condition grouping.
func (r Role) Faction() Faction { return r.Capability().Faction }

// VoteWeight returns the tally weight of a single day vote cast by this role.
func (r Role) VoteWeight() int { return r.Capability().VoteWeight }

// MafiaAligned reports whether the role counts toward the mafia population.
// The lawyer, informer, silencer and bomber play for the mafia but group as
// citizens everywhere the rules can observe a faction (checks, comparisons,
// and the win tally).
func (r Role) MafiaAligned() bool { return r == RoleMafia || r == RoleDon }

// CanPerform reports whether the role may submit the given night action.
func (r Role) CanPerform(a ActionType) bool {
	for _, allowed := range r.Capability().NightActions {
		if allowed == a {
			return true
		}
	}
	return false
}

// HasNightAction reports whether the role is expected to act at night.
func (r Role) HasNightAction() bool { return len(r.Capability().NightActions) > 0 }

// OptionalRoles are the roles a room can toggle on in its settings, in the
// order the pool builder appends them.
var OptionalRoles = []Role{
	RoleJester,
	RoleEscort,
	RoleSerialKiller,
	RoleLawyer,
	RoleBodyguard,
	RoleTracker,
	RoleInformer,
	RoleMayor,
	RoleJudge,
	RoleBomber,
	RoleTrapper,
	RoleSilencer,
	RoleJournalist,
}
