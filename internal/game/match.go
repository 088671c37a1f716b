// internal/game/match.go
//
// MatchState for one board: the hidden answer, the append-only guess record,
// and the playing → won/lost transitions.
//
// State transitions (Apply):
//   - guess equals the answer            → won
//   - guess count reaches MaxRounds      → lost
//   - otherwise                          → playing
package game

import "time"

// Match holds the state of a single board.
type Match struct {
	ID        string
	Answer    string // hidden until Status != playing
	Guesses   []Guess
	Status    Status
	MaxRounds int
	CreatedAt time.Time
}

// NewMatch constructs a playing board against answer.
// A non-positive maxRounds falls back to DefaultMaxRounds.
func NewMatch(id, answer string, maxRounds int, now time.Time) Match {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return Match{
		ID:        id,
		Answer:    answer,
		Guesses:   []Guess{},
		Status:    StatusPlaying,
		MaxRounds: maxRounds,
		CreatedAt: now,
	}
}

// Finished reports whether the board reached won or lost.
func (m *Match) Finished() bool { return m.Status != StatusPlaying }

// Apply records an evaluated guess and returns the resulting status.
// The word must already be normalized and ev computed against m.Answer.
func (m *Match) Apply(word string, ev Evaluation) (Status, error) {
	if m.Finished() {
		return m.Status, Conflict("Game is already finished")
	}
	m.Guesses = append(m.Guesses, Guess{Word: word, Evaluation: ev})
	switch {
	case word == m.Answer:
		m.Status = StatusWon
	case len(m.Guesses) >= m.MaxRounds:
		m.Status = StatusLost
	}
	return m.Status, nil
}

// Forfeit imposes a loss on a board that is still playing.
func (m *Match) Forfeit() {
	if m.Status == StatusPlaying {
		m.Status = StatusLost
	}
}

// RevealedAnswer returns the answer once the board is finished, else "".
func (m *Match) RevealedAnswer() string {
	if m.Finished() {
		return m.Answer
	}
	return ""
}
