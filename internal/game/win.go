package game

// EvaluateWin recomputes faction populations and reports whether the game is
// over and who won. The rule order is deliberate: total wipe-out, civilian
// win, mafia parity, then the maniac endgame (which requires mafia to be
// fully gone even if the maniac already dominates numerically).
func EvaluateWin(s *GameState) (winner string, over bool) {
	alive := s.Alive()
	mafia, maniac := 0, 0
	for _, p := range alive {
		switch {
		case p.Role.MafiaAligned():
			mafia++
		case p.Role == RoleSerialKiller:
			maniac++
		}
	}
	civilians := len(alive) - mafia - maniac

	switch {
	case len(alive) == 0:
		return WinnerDraw, true
	case mafia == 0 && maniac == 0:
		return WinnerCivilians, true
	case mafia > 0 && mafia >= civilians+maniac:
		return WinnerMafia, true
	case maniac > 0 && len(alive) <= 2 && mafia == 0:
		return WinnerManiac, true
	}
	return "", false
}

// WinningFaction maps a finished game's winner to the faction label bets are
// settled against. Draws and a jester win pay nobody.
func WinningFaction(winner string) (Faction, bool) {
	switch winner {
	case WinnerCivilians:
		return FactionCivilians, true
	case WinnerMafia:
		return FactionMafia, true
	case WinnerManiac:
		return FactionManiac, true
	}
	return "", false
}
