package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(s string) Evaluation {
	var out Evaluation
	for i, c := range s {
		switch c {
		case 'C':
			out[i] = Correct
		case 'P':
			out[i] = Present
		default:
			out[i] = Absent
		}
	}
	return out
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		guess, target string
		want          string
	}{
		{"LIGHT", "FIGHT", "-CCCC"},
		{"SPEED", "ERASE", "P-PP-"},
		{"SPEED", "ABIDE", "--P-P"},
		{"CRANE", "CRANE", "CCCCC"},
		{"EERIE", "THERE", "P-P-C"},
		{"ABBEY", "BABES", "PPCC-"},
		{"QUICK", "WORLD", "-----"},
	}
	for _, tc := range cases {
		t.Run(tc.guess+"/"+tc.target, func(t *testing.T) {
			assert.Equal(t, ev(tc.want), Evaluate(tc.guess, tc.target))
		})
	}
}

func TestEvaluateNeverOvercountsLetters(t *testing.T) {
	list := []string{"SPEED", "ERASE", "EERIE", "THERE", "ABBEY", "BABES", "LLAMA", "HELLO", "WORLD", "GEESE", "EMCEE", "SASSY"}
	for _, g := range list {
		for _, target := range list {
			res := Evaluate(g, target)
			exact := 0
			credited := map[byte]int{}
			for i := 0; i < WordLength; i++ {
				if g[i] == target[i] {
					exact++
				}
				if res[i] != Absent {
					credited[g[i]]++
				}
			}
			hits, _ := res.Counts()
			assert.Equal(t, exact, hits, "%s vs %s", g, target)
			for l, n := range credited {
				assert.LessOrEqual(t, n, strings.Count(target, string(l)), "%s vs %s letter %c", g, target, l)
			}
		}
	}
}

func TestEvaluateIsPure(t *testing.T) {
	first := Evaluate("SPEED", "ERASE")
	second := Evaluate("SPEED", "ERASE")
	assert.Equal(t, first, second)
}

func TestEvaluationHelpers(t *testing.T) {
	assert.True(t, ev("CCCCC").Solved())
	assert.False(t, ev("CCCC-").Solved())
	assert.True(t, ev("-----").Blank())
	assert.False(t, ev("----P").Blank())
	hits, presents := ev("CPP-C").Counts()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, presents)
}

func TestNormalize(t *testing.T) {
	w, err := Normalize("  crane ")
	require.NoError(t, err)
	assert.Equal(t, "CRANE", w)

	_, err = Normalize("cran")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Guess must be exactly 5 letters long", err.Error())

	_, err = Normalize("cr4ne")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Guess must contain only letters", err.Error())
}
