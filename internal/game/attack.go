// internal/game/attack.go
//
// Attack resolver for the multiplayer coin economy.
//   - punch (1 coin): removes one random letter from the target's absent set.
//   - bomb  (2 coins): removes one random letter from the target's present set,
//     excluding letters the target also knows as correct.
//
// The resolver never touches coins. The caller deducts the cost first and the
// attacker pays even when no letter is eligible.
package game

// AttackType names an attack.
type AttackType string

const (
	Punch AttackType = "punch"
	Bomb  AttackType = "bomb"
)

// Cost returns the coin price of the attack.
func (a AttackType) Cost() (int, error) {
	switch a {
	case Punch:
		return 1, nil
	case Bomb:
		return 2, nil
	}
	return 0, Validation("Unknown attack type")
}

// AttackResult is the outcome of one resolved attack.
type AttackResult struct {
	Success            bool       `json:"success"`
	EliminatedLetter   string     `json:"eliminatedLetter,omitempty"`
	EliminatedCategory TileStatus `json:"eliminatedCategory,omitempty"`
}

// ExecuteAttack picks a uniformly random eligible letter from target and removes it.
// An unknown attack type or an empty eligible pool yields Success=false and no change.
func ExecuteAttack(kind AttackType, target *Discovery, rng Rand) AttackResult {
	var (
		pool     LetterSet
		from     *LetterSet
		category TileStatus
	)
	switch kind {
	case Punch:
		pool, from, category = target.Absent, &target.Absent, Absent
	case Bomb:
		pool, from, category = target.Present.Without(target.Correct), &target.Present, Present
	default:
		return AttackResult{}
	}

	letters := pool.Letters()
	if len(letters) == 0 {
		return AttackResult{}
	}
	picked := letters[rng.IntN(len(letters))]
	from.Remove(picked[0])
	return AttackResult{Success: true, EliminatedLetter: picked, EliminatedCategory: category}
}
