// internal/game/types.go
//
// Core type definitions for the Wordle game engine.
// Defines:
//   - TileStatus: per-letter verdict of a guess (correct/present/absent).
//   - Evaluation: the five verdicts for one guess.
//   - Status: state of a single board (playing/won/lost).
//   - Guess: one entry of a board's append-only guess record.

package game

// WordLength is the fixed number of letters in every word.
const WordLength = 5

// DefaultMaxRounds is the number of guesses a board allows unless configured otherwise.
const DefaultMaxRounds = 6

// TileStatus represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the answer at this position.
//   - "present": letter is in the answer at another (unconsumed) position.
//   - "absent":  letter is not available in the answer.
type TileStatus string

const (
	Correct TileStatus = "correct"
	Present TileStatus = "present"
	Absent  TileStatus = "absent"
)

// Evaluation is the per-position verdict for one guess against one target.
type Evaluation [WordLength]TileStatus

// Solved reports whether every tile is Correct.
func (e Evaluation) Solved() bool {
	for _, s := range e {
		if s != Correct {
			return false
		}
	}
	return true
}

// Blank reports whether every tile is Absent (the guess revealed nothing).
func (e Evaluation) Blank() bool {
	for _, s := range e {
		if s != Absent {
			return false
		}
	}
	return true
}

// Counts returns the number of Correct and Present tiles.
func (e Evaluation) Counts() (hits, presents int) {
	for _, s := range e {
		switch s {
		case Correct:
			hits++
		case Present:
			presents++
		}
	}
	return hits, presents
}

// Status is the coarse state of one board.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Guess is one recorded (word, evaluation) pair.
type Guess struct {
	Word       string     `json:"word"`
	Evaluation Evaluation `json:"evaluation"`
}
