package hostcheat

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyin1122/wordle/internal/game"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

var smallDict = []string{"HELLO", "WORLD", "QUITE", "FANCY", "FRESH", "PANIC", "CRAZY", "BUGGY", "SCARE"}

func newHost(t *testing.T, words []string) *Host {
	t.Helper()
	h, err := NewHost(words, fixedRand(0), zerolog.Nop())
	require.NoError(t, err)
	return h
}

func TestHelloWorld(t *testing.T) {
	h := newHost(t, []string{"HELLO", "WORLD"})

	answer, ev := h.Reveal("WORLD")
	assert.Equal(t, "HELLO", answer)
	assert.False(t, ev.Solved())
	assert.Equal(t, game.Evaluate("WORLD", "HELLO"), ev)
	assert.Equal(t, 1, h.Remaining())

	answer, ev = h.Reveal("HELLO")
	assert.Equal(t, "HELLO", answer)
	assert.True(t, ev.Solved())
}

func TestLiteralGuessNeverChosenWhileAlternativesRemain(t *testing.T) {
	for _, g := range smallDict {
		c, ok := SelectAnswer(NewPool(smallDict), g)
		require.True(t, ok)
		assert.NotEqual(t, g, c.Word, "guess %s", g)
	}

	h := newHost(t, smallDict)
	for _, g := range []string{"SCARE", "PANIC", "FRESH", "QUITE", "HELLO", "WORLD", "BUGGY", "CRAZY", "FANCY"} {
		before := h.Remaining()
		answer, _ := h.Reveal(g)
		if answer == g {
			assert.Equal(t, 1, before, "literal guess %s chosen with %d candidates", g, before)
		}
	}
}

func TestSingleCandidateIsForced(t *testing.T) {
	c, ok := SelectAnswer(Pool{{Word: "CRANE"}}, "CRANE")
	require.True(t, ok)
	assert.Equal(t, "CRANE", c.Word)

	_, ok = SelectAnswer(nil, "CRANE")
	assert.False(t, ok)
}

func TestZeroFeedbackPreferred(t *testing.T) {
	c, ok := SelectAnswer(NewPool([]string{"CRANE", "JUMPY", "FIGHT"}), "CRANE")
	require.True(t, ok)
	assert.Equal(t, "JUMPY", c.Word)

	// previous-round scores break the tie among blank candidates
	pool := Pool{
		{Word: "CRANE"},
		{Word: "JUMPY", Presents: 1, Score: 1},
		{Word: "FIGHT", Hits: 1, Score: 10},
	}
	c, _ = SelectAnswer(pool, "CRANE")
	assert.Equal(t, "FIGHT", c.Word)
}

func TestMinimumScoreWhenEveryCandidateReveals(t *testing.T) {
	c, _ := SelectAnswer(NewPool([]string{"CRANE", "TRACE", "SLATE"}), "CRATE")
	assert.Equal(t, "SLATE", c.Word)

	c, _ = SelectAnswer(NewPool([]string{"LIGHT", "MIGHT"}), "SIGHT")
	assert.Equal(t, "LIGHT", c.Word)
}

func TestUpdateKeepsOnlyConsistentCandidates(t *testing.T) {
	ev := game.Evaluate("SIGHT", "LIGHT")
	out := Update(NewPool([]string{"LIGHT", "MIGHT", "CRANE", "SIGHT"}), "SIGHT", ev)
	words := make([]string, 0, len(out))
	for _, c := range out {
		words = append(words, c.Word)
		assert.Equal(t, 4, c.Hits)
		assert.Equal(t, 40, c.Score)
	}
	assert.Equal(t, []string{"LIGHT", "MIGHT"}, words)
}

func TestPoolStaysConsistentWithHistory(t *testing.T) {
	d := []string{"ABOUT", "ABOVE", "CRANE", "SLATE", "TRACE", "LIGHT", "MIGHT", "NIGHT", "FIGHT", "SIGHT", "WORLD", "HELLO", "QUICK", "JUMPY"}
	h := newHost(t, d)
	type round struct {
		guess string
		ev    game.Evaluation
	}
	var hist []round
	for _, g := range []string{"CRANE", "LIGHT", "SIGHT", "ABOUT"} {
		_, ev := h.Reveal(g)
		hist = append(hist, round{g, ev})
		require.Positive(t, h.Remaining())
		for _, c := range h.Candidates() {
			for _, r := range hist {
				assert.Equal(t, r.ev, game.Evaluate(r.guess, c.Word), "%s after %s", c.Word, r.guess)
			}
		}
	}
}

func TestRevealFallsBackOnEmptyPool(t *testing.T) {
	h := newHost(t, []string{"HELLO", "WORLD"})
	h.pool = nil
	h.rng = fixedRand(1)
	answer, ev := h.Reveal("CRANE")
	assert.Equal(t, "WORLD", answer)
	assert.Equal(t, game.Evaluate("CRANE", "WORLD"), ev)
}

func TestNewHostRejectsEmptyDictionary(t *testing.T) {
	_, err := NewHost(nil, fixedRand(0), zerolog.Nop())
	assert.Error(t, err)
}
