// internal/game/engine.go
//
// Guess evaluation for a single Wordle board.
// Responsibilities:
//   - Normalize and validate raw guesses (length, alphabetic).
//   - Score guesses using the classic two-pass Wordle algorithm.
//
// Notes:
//   - Words are handled in uppercase A–Z throughout the engine.
//   - Evaluate is pure: the same (guess, target) pair always yields the same result.
package game

import "strings"

// Normalize trims and uppercases a raw guess and checks that it is exactly
// WordLength letters A–Z. The returned error is a validation error whose message
// is safe to show to the client.
func Normalize(raw string) (string, error) {
	w := strings.ToUpper(strings.TrimSpace(raw))
	if len(w) != WordLength {
		return "", Validation("Guess must be exactly 5 letters long")
	}
	if !isAlpha(w) {
		return "", Validation("Guess must contain only letters")
	}
	return w, nil
}

// Evaluate implements the standard two-pass Wordle scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) target letters.
//
// Pass 2:
//   - For each non-correct guess letter: if there is remaining count for that
//     letter, mark Present and decrement the count; otherwise mark Absent.
//
// Both inputs must already be normalized; malformed input is the caller's problem.
func Evaluate(guess, target string) Evaluation {
	var res Evaluation
	var counts [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == target[i] {
			res[i] = Correct
		} else if j := idx(target[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < WordLength; i++ {
		if res[i] == Correct {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && counts[j] > 0 {
			res[i] = Present
			counts[j]--
		} else {
			res[i] = Absent
		}
	}
	return res
}

// idx maps an uppercase ASCII letter to 0..25, or -1.
func idx(b byte) int {
	if b < 'A' || b > 'Z' {
		return -1
	}
	return int(b - 'A')
}

// isAlpha checks that a string consists only of uppercase A–Z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
