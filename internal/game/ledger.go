// internal/game/ledger.go
//
// Discovery / coin ledger.
// Each player accumulates three letter sets across all of their guesses in a
// match: letters known correct, present, and absent. A guess earns coins for
// letters newly discovered in a category:
//   - newly present: 1 coin each
//   - newly correct: 2 coins each
//   - newly absent:  0 coins (still tracked; punch attacks draw from it)
//
// Correct and present only grow through the ledger; a letter leaves absent once
// it is found present or correct. Attacks are the only other way sets shrink.
package game

import (
	"encoding/json"
	"strings"
)

const (
	presentCoins = 1
	correctCoins = 2
)

// LetterSet is a set of letters A–Z stored as a bitmask.
type LetterSet uint32

func bit(l byte) LetterSet {
	j := idx(l)
	if j < 0 {
		return 0
	}
	return 1 << uint(j)
}

// Has reports whether l is in the set.
func (s LetterSet) Has(l byte) bool {
	b := bit(l)
	return b != 0 && s&b != 0
}

// Add inserts l.
func (s *LetterSet) Add(l byte) { *s |= bit(l) }

// Remove deletes l.
func (s *LetterSet) Remove(l byte) { *s &^= bit(l) }

// Without returns the letters of s that are not in o.
func (s LetterSet) Without(o LetterSet) LetterSet { return s &^ o }

// Len returns the number of letters in the set.
func (s LetterSet) Len() int {
	n := 0
	for x := s; x != 0; x &= x - 1 {
		n++
	}
	return n
}

// Letters returns the members in alphabetical order.
func (s LetterSet) Letters() []string {
	out := make([]string, 0, s.Len())
	for j := 0; j < 26; j++ {
		if s&(1<<uint(j)) != 0 {
			out = append(out, string(rune('A'+j)))
		}
	}
	return out
}

func (s LetterSet) String() string { return strings.Join(s.Letters(), "") }

// MarshalJSON encodes the set as a sorted array of one-letter strings.
func (s LetterSet) MarshalJSON() ([]byte, error) { return json.Marshal(s.Letters()) }

// Discovery holds one player's cumulative discovery sets.
type Discovery struct {
	Correct LetterSet `json:"correctLetters"`
	Present LetterSet `json:"presentLetters"`
	Absent  LetterSet `json:"absentLetters"`
}

// LedgerResult is the outcome of applying one guess to a Discovery.
type LedgerResult struct {
	Evaluation   Evaluation `json:"evaluation"`
	CoinsEarned  int        `json:"coinsEarned"`
	NewlyCorrect []string   `json:"newlyCorrect"`
	NewlyPresent []string   `json:"newlyPresent"`
	NewlyAbsent  []string   `json:"newlyAbsent"`
}

// ApplyGuess evaluates guess against target, folds the verdicts into d and
// returns the coins earned for newly discovered letters.
//
// Positions are visited left to right. A letter known present or correct is
// never kept in the absent set, whichever of its tiles comes first.
func (d *Discovery) ApplyGuess(guess, target string) LedgerResult {
	ev := Evaluate(guess, target)
	var newCorrect, newPresent, newAbsent LetterSet

	for i := 0; i < WordLength; i++ {
		l := guess[i]
		switch ev[i] {
		case Correct:
			if !d.Correct.Has(l) {
				d.Correct.Add(l)
				newCorrect.Add(l)
			}
			d.Absent.Remove(l)
			newAbsent.Remove(l)
		case Present:
			if !d.Correct.Has(l) && !d.Present.Has(l) {
				d.Present.Add(l)
				newPresent.Add(l)
			}
			d.Absent.Remove(l)
			newAbsent.Remove(l)
		case Absent:
			if !d.Correct.Has(l) && !d.Present.Has(l) && !d.Absent.Has(l) {
				d.Absent.Add(l)
				newAbsent.Add(l)
			}
		}
	}

	return LedgerResult{
		Evaluation:   ev,
		CoinsEarned:  newPresent.Len()*presentCoins + newCorrect.Len()*correctCoins,
		NewlyCorrect: newCorrect.Letters(),
		NewlyPresent: newPresent.Letters(),
		NewlyAbsent:  newAbsent.Letters(),
	}
}
