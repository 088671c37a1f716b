// internal/history/history.go
//
// Finished-match history and leaderboard.
//
// Responsibilities:
//   - Opening SQLite with safe defaults (busy timeout, WAL for file databases).
//   - Applying the embedded migrations in lexical order, recorded in _migrations.
//   - Recording one row per player per finished match.
//   - Aggregating a per-mode leaderboard (wins desc, average winning guesses asc).
//
// The default DSN is a shared in-memory database, so history lives as long as
// the process does.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/lvyin1122/wordle/assets"
	"github.com/lvyin1122/wordle/internal/game"
)

// DefaultDSN keeps history in memory for the lifetime of the process.
const DefaultDSN = "file:wordle_history?mode=memory&cache=shared"

// Game modes stored in the mode column.
const (
	ModeClassic     = "classic"
	ModeCheat       = "cheat"
	ModeMultiplayer = "multiplayer"
)

// Result is one player's outcome for one finished match.
type Result struct {
	MatchID    string
	Mode       string
	RoomID     string
	PlayerName string
	Status     game.Status
	Guesses    int
	Answer     string
	Coins      int
	FinishedAt time.Time
}

// Row is one leaderboard line.
type Row struct {
	PlayerName string  `json:"playerName"`
	Played     int     `json:"played"`
	Wins       int     `json:"wins"`
	AvgGuesses float64 `json:"avgGuesses"`
}

// Store is a SQLite-backed history.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open connects to dsn and applies migrations.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite3", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log.With().Str("component", "history").Logger()}
	if err := s.migrate(ctx, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	opts := "_busy_timeout=5000"
	if !strings.Contains(dsn, "mode=memory") && !strings.Contains(dsn, ":memory:") {
		opts += "&_journal_mode=WAL"
	}
	return dsn + sep + opts
}

// migrate applies every *.sql file in fsys that is not yet recorded, each in
// its own transaction.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			s.log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		s.log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Record inserts r. A zero FinishedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, r Result) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO match_results
            (match_id, mode, room_id, player_name, status, guesses, answer, coins, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.Mode, r.RoomID, r.PlayerName, string(r.Status), r.Guesses, r.Answer, r.Coins, r.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// Leaderboard ranks players by wins, then by average guesses on won matches.
// An empty mode aggregates every mode. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, mode string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT player_name,
               COUNT(1),
               SUM(CASE WHEN status = 'won' THEN 1 ELSE 0 END) AS wins,
               AVG(CASE WHEN status = 'won' THEN guesses END)  AS avg_guesses
        FROM match_results
        WHERE ? = '' OR mode = ?
        GROUP BY player_name
        ORDER BY wins DESC, COALESCE(avg_guesses, 1e9) ASC, player_name ASC
        LIMIT ?`, mode, mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var (
			r   Row
			avg sql.NullFloat64
		)
		if err := rows.Scan(&r.PlayerName, &r.Played, &r.Wins, &avg); err != nil {
			return nil, err
		}
		r.AvgGuesses = avg.Float64
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }
