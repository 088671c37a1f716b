package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyin1122/wordle/internal/game"
)

func TestNewNormalizesAndFilters(t *testing.T) {
	d, err := New([]string{" crane ", "CRANE", "toolong", "ab1cd", "slate"}, []string{"adieu", "nope"})
	require.NoError(t, err)

	assert.Equal(t, []string{"CRANE", "SLATE"}, d.Answers())
	assert.True(t, d.Contains("ADIEU"))
	assert.True(t, d.Contains("CRANE"))
	assert.False(t, d.Contains("NOPE"))
	assert.True(t, d.IsAnswer("SLATE"))
	assert.False(t, d.IsAnswer("ADIEU"))

	a, b := d.Stats()
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, b)
	assert.Equal(t, []string{"ADIEU", "CRANE", "SLATE"}, d.Allowed())
}

func TestNewRejectsEmptyAnswers(t *testing.T) {
	_, err := New([]string{"xx"}, []string{"crane"})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	d, err := Load("", "")
	require.NoError(t, err)
	assert.True(t, d.IsAnswer("HELLO"))
	assert.True(t, d.IsAnswer("WORLD"))
	assert.True(t, d.Contains("EERIE"))
	n, m := d.Stats()
	assert.Greater(t, n, 100)
	assert.Greater(t, m, n)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	ans := filepath.Join(dir, "answers.txt")
	allow := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(ans, []byte("hello\nworld\n"), 0o644))
	require.NoError(t, os.WriteFile(allow, []byte("crane\n"), 0o644))

	d, err := Load(ans, allow)
	require.NoError(t, err)
	assert.Equal(t, []string{"HELLO", "WORLD"}, d.Answers())
	assert.True(t, d.Contains("CRANE"))

	only, err := Load("", allow)
	require.NoError(t, err)
	assert.Equal(t, []string{"CRANE"}, only.Answers())

	_, err = Load(filepath.Join(dir, "missing.txt"), allow)
	assert.Error(t, err)
}

func TestRandomDrawsFromAnswers(t *testing.T) {
	d, err := New([]string{"hello", "world"}, nil)
	require.NoError(t, err)
	rng := game.NewRand(7)
	for i := 0; i < 20; i++ {
		assert.True(t, d.IsAnswer(d.Random(rng)))
	}
}
