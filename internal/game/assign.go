package game

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrTooManyRoles means the configured role pool does not fit the seated
// player count; the game must not start.
var ErrTooManyRoles = errors.New("configured roles exceed player count")

// BuildRolePool assembles the role list for n players under the given
// options. The result always has exactly n entries, padded with citizens.
func BuildRolePool(n int, opts Options) ([]Role, error) {
	mafia := n / 3
	if mafia < 1 {
		mafia = 1
	}

	pool := make([]Role, 0, n)
	for i := 0; i < mafia; i++ {
		pool = append(pool, RoleMafia)
	}
	if n >= 7 {
		pool[0] = RoleDon
	}

	pool = append(pool, RoleSheriff, RoleDoctor)
	if n >= 6 {
		pool = append(pool, RoleDoctor)
	}

	// Threshold-gated optional roles.
	if n >= 7 && opts.RoleEnabled(RoleJester) {
		pool = append(pool, RoleJester)
	}
	if n >= 8 && opts.RoleEnabled(RoleEscort) {
		pool = append(pool, RoleEscort)
	}
	if n >= 9 && opts.RoleEnabled(RoleSerialKiller) {
		pool = append(pool, RoleSerialKiller)
	}

	// The rest of the enabled optional roles join unconditionally.
	for _, r := range OptionalRoles {
		switch r {
		case RoleJester, RoleEscort, RoleSerialKiller:
			continue
		}
		if opts.RoleEnabled(r) {
			pool = append(pool, r)
		}
	}
	if opts.LoversEnabled {
		pool = append(pool, RoleLover, RoleLover)
	}

	if len(pool) > n {
		return nil, fmt.Errorf("%w: %d roles for %d players", ErrTooManyRoles, len(pool), n)
	}
	for len(pool) < n {
		pool = append(pool, RoleCitizen)
	}

	if err := Shuffle(pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// AssignRoles builds and deals the role pool to the non-spectator players,
// linking the lovers pair if present. Roles are immutable once set.
func (s *GameState) AssignRoles() error {
	participants := []*PlayerState{}
	for _, p := range s.Players {
		if !p.Spectator {
			participants = append(participants, p)
		}
	}
	pool, err := BuildRolePool(len(participants), s.Options)
	if err != nil {
		return err
	}
	lovers := []*PlayerState{}
	for i, p := range participants {
		p.Role = pool[i]
		if pool[i] == RoleLover {
			lovers = append(lovers, p)
		}
	}
	if len(lovers) == 2 {
		lovers[0].LoverID = lovers[1].UserID
		lovers[1].LoverID = lovers[0].UserID
	}
	return nil
}

// Shuffle performs a Fisher-Yates permutation driven by crypto/rand. Role
// distribution is a fairness guarantee players can audit through outcome
// statistics, so a seeded PRNG is not acceptable here.
func Shuffle(roles []Role) error {
	for i := len(roles) - 1; i > 0; i-- {
		j, err := RandomIndex(i + 1)
		if err != nil {
			return err
		}
		roles[i], roles[j] = roles[j], roles[i]
	}
	return nil
}

// RandomIndex returns an unbiased index in [0, n) from crypto/rand.
func RandomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("random index: non-positive bound %d", n)
	}
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read crypto random: %w", err)
	}
	return int(v.Int64()), nil
}
