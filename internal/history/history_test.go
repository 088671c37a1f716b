package history

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyin1122/wordle/internal/game"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:history_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	s, err := Open(context.Background(), dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, "data.db?_busy_timeout=5000&_journal_mode=WAL", withPragmas("data.db"))
	assert.Equal(t, "file:x?mode=memory&cache=shared&_busy_timeout=5000", withPragmas("file:x?mode=memory&cache=shared"))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	require.NoError(t, s.migrate(ctx, fstest.MapFS{}))

	extra := fstest.MapFS{"002_extra.sql": {Data: []byte(`CREATE TABLE extra (id INTEGER);`)}}
	require.NoError(t, s.migrate(ctx, extra))
	require.NoError(t, s.migrate(ctx, extra))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestRecordAndLeaderboard(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	results := []Result{
		{MatchID: "m1", Mode: ModeMultiplayer, RoomID: "1234", PlayerName: "ann", Status: game.StatusWon, Guesses: 3, Answer: "CRANE", Coins: 9},
		{MatchID: "m1", Mode: ModeMultiplayer, RoomID: "1234", PlayerName: "bob", Status: game.StatusLost, Guesses: 2, Answer: "CRANE"},
		{MatchID: "m2", Mode: ModeMultiplayer, RoomID: "4321", PlayerName: "bob", Status: game.StatusWon, Guesses: 5, Answer: "SLATE"},
		{MatchID: "m3", Mode: ModeMultiplayer, RoomID: "4321", PlayerName: "cat", Status: game.StatusWon, Guesses: 2, Answer: "SLATE"},
		{MatchID: "m4", Mode: ModeClassic, PlayerName: "solo", Status: game.StatusWon, Guesses: 4, Answer: "LIGHT"},
	}
	for _, r := range results {
		require.NoError(t, s.Record(ctx, r))
	}

	rows, err := s.Leaderboard(ctx, ModeMultiplayer, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "cat", rows[0].PlayerName)
	assert.Equal(t, "ann", rows[1].PlayerName)
	assert.Equal(t, Row{PlayerName: "bob", Played: 2, Wins: 1, AvgGuesses: 5}, rows[2])

	all, err := s.Leaderboard(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	top, err := s.Leaderboard(ctx, ModeMultiplayer, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestLeaderboardEmptyMode(t *testing.T) {
	s := openTest(t)
	rows, err := s.Leaderboard(context.Background(), ModeCheat, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
