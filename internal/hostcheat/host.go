// internal/hostcheat/host.go
//
// Adversarial answer selection ("host cheating").
//
// The host never commits to an answer. It keeps a pool of candidates that are
// consistent with every piece of feedback given so far and, for each guess,
// reveals whichever candidate tells the player the least:
//   - one candidate left: it is forced.
//   - some candidates give all-absent feedback: pick among those the one with
//     the best score from the previous round (hits, then presents).
//   - otherwise: pick the lowest hits×10+presents for the current guess,
//     first in pool order on ties.
//
// After evaluating, the pool is narrowed to candidates that would have produced
// the same feedback and rescored against the guess.
package hostcheat

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/lvyin1122/wordle/internal/game"
)

// Candidate is a pool entry with its score from the last update.
type Candidate struct {
	Word     string `json:"word"`
	Hits     int    `json:"hits"`
	Presents int    `json:"presents"`
	Score    int    `json:"score"`
}

// Pool is an ordered candidate pool. Order is the tie-breaker.
type Pool []Candidate

// NewPool seeds a pool with zero scores.
func NewPool(words []string) Pool {
	p := make(Pool, len(words))
	for i, w := range words {
		p[i] = Candidate{Word: w}
	}
	return p
}

func score(ev game.Evaluation) (hits, presents, total int) {
	hits, presents = ev.Counts()
	return hits, presents, hits*10 + presents
}

// SelectAnswer picks the candidate to treat as the answer for guess.
// It returns false only for an empty pool.
func SelectAnswer(pool Pool, guess string) (Candidate, bool) {
	switch len(pool) {
	case 0:
		return Candidate{}, false
	case 1:
		return pool[0], true
	}

	blank := -1
	best, bestScore := -1, 0
	for i, c := range pool {
		ev := game.Evaluate(guess, c.Word)
		if ev.Blank() {
			if blank < 0 || c.Hits > pool[blank].Hits ||
				(c.Hits == pool[blank].Hits && c.Presents > pool[blank].Presents) {
				blank = i
			}
			continue
		}
		_, _, s := score(ev)
		if best < 0 || s < bestScore {
			best, bestScore = i, s
		}
	}
	if blank >= 0 {
		return pool[blank], true
	}
	return pool[best], true
}

// Update keeps the candidates that reproduce ev for guess, rescored against
// guess, and then only those sharing the minimum score.
func Update(pool Pool, guess string, ev game.Evaluation) Pool {
	kept := make(Pool, 0, len(pool))
	lowest := -1
	for _, c := range pool {
		if game.Evaluate(guess, c.Word) != ev {
			continue
		}
		c.Hits, c.Presents, c.Score = score(ev)
		kept = append(kept, c)
		if lowest < 0 || c.Score < lowest {
			lowest = c.Score
		}
	}
	out := kept[:0]
	for _, c := range kept {
		if c.Score == lowest {
			out = append(out, c)
		}
	}
	return out
}

// Host runs one adversarial board. Not safe for concurrent use; the owning
// game serializes access.
type Host struct {
	pool Pool
	dict []string
	rng  game.Rand
	log  zerolog.Logger
}

// NewHost starts a host over words. words doubles as the fallback dictionary.
func NewHost(words []string, rng game.Rand, log zerolog.Logger) (*Host, error) {
	if len(words) == 0 {
		return nil, errors.New("hostcheat: empty word list")
	}
	return &Host{
		pool: NewPool(words),
		dict: words,
		rng:  rng,
		log:  log.With().Str("component", "hostcheat").Logger(),
	}, nil
}

// Reveal chooses the answer for this round, evaluates guess against it and
// narrows the pool.
func (h *Host) Reveal(guess string) (string, game.Evaluation) {
	c, ok := SelectAnswer(h.pool, guess)
	if !ok {
		w := h.dict[h.rng.IntN(len(h.dict))]
		h.log.Error().Str("guess", guess).Str("fallback", w).Msg("candidate pool empty, using random word")
		return w, game.Evaluate(guess, w)
	}
	ev := game.Evaluate(guess, c.Word)
	h.pool = Update(h.pool, guess, ev)
	h.log.Debug().Str("guess", guess).Str("revealed", c.Word).Int("remaining", len(h.pool)).Msg("round resolved")
	return c.Word, ev
}

// Remaining returns the current pool size.
func (h *Host) Remaining() int { return len(h.pool) }

// Candidates returns a copy of the pool.
func (h *Host) Candidates() Pool { return append(Pool(nil), h.pool...) }
