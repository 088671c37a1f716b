// internal/solo/solo.go
//
// Single-player games.
//   - classic: a fixed answer drawn at start.
//   - cheat:   no fixed answer. A hostcheat.Host reveals the least helpful
//     candidate for every guess; the board is won only when the guess equals
//     the candidate revealed for it.
//
// Finished games are written to history. Games are reaped once finished or
// older than the TTL.
package solo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lvyin1122/wordle/internal/game"
	"github.com/lvyin1122/wordle/internal/history"
	"github.com/lvyin1122/wordle/internal/hostcheat"
	"github.com/lvyin1122/wordle/internal/store"
)

// Mode selects the answer policy.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeCheat   Mode = "cheat"
)

// ParseMode maps the request field to a Mode. Empty means classic.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeClassic:
		return ModeClassic, nil
	case ModeCheat:
		return ModeCheat, nil
	}
	return "", game.Validation("Unknown game mode")
}

// Dictionary supplies answers.
type Dictionary interface {
	Random(rng game.Rand) string
	Answers() []string
}

// Validator accepts or rejects a normalized guess.
type Validator interface {
	Validate(ctx context.Context, word string) error
}

// Recorder persists finished games.
type Recorder interface {
	Record(ctx context.Context, r history.Result) error
}

// Game is one single-player board. Fields below mu are guarded by it.
type Game struct {
	mu    sync.Mutex
	mode  Mode
	match game.Match
	host  *hostcheat.Host
	gone  bool
}

// Age implements store.Aged.
func (g *Game) Age() (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.CreatedAt, g.match.Finished()
}

// Config holds the service's collaborators. Recorder, Now and NewID are optional.
type Config struct {
	Store     store.Store[*Game]
	Dict      Dictionary
	Validator Validator
	Recorder  Recorder
	Rand      game.Rand
	MaxRounds int
	TTL       time.Duration
	Now       func() time.Time
	NewID     func() string
	Logger    zerolog.Logger
}

// Service runs single-player games.
type Service struct {
	games     store.Store[*Game]
	dict      Dictionary
	validator Validator
	recorder  Recorder
	rng       game.Rand
	maxRounds int
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// NewService builds a Service from cfg, filling defaults.
func NewService(cfg Config) *Service {
	s := &Service{
		games:     cfg.Store,
		dict:      cfg.Dict,
		validator: cfg.Validator,
		recorder:  cfg.Recorder,
		rng:       cfg.Rand,
		maxRounds: cfg.MaxRounds,
		ttl:       cfg.TTL,
		now:       cfg.Now,
		newID:     cfg.NewID,
		log:       cfg.Logger.With().Str("component", "solo").Logger(),
	}
	if s.games == nil {
		s.games = store.NewMemoryStore[*Game]()
	}
	if s.maxRounds <= 0 {
		s.maxRounds = game.DefaultMaxRounds
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// StartResult answers Start.
type StartResult struct {
	GameID    string `json:"gameId"`
	MaxRounds int    `json:"maxRounds"`
	Mode      Mode   `json:"mode"`
}

// Start creates a board.
func (s *Service) Start(ctx context.Context, mode Mode) (StartResult, error) {
	g := &Game{mode: mode}
	id := s.newID()
	switch mode {
	case ModeClassic:
		g.match = game.NewMatch(id, s.dict.Random(s.rng), s.maxRounds, s.now())
	case ModeCheat:
		h, err := hostcheat.NewHost(s.dict.Answers(), s.rng, s.log)
		if err != nil {
			return StartResult{}, err
		}
		g.host = h
		g.match = game.NewMatch(id, "", s.maxRounds, s.now())
	default:
		return StartResult{}, game.Validation("Unknown game mode")
	}
	if err := s.games.Create(ctx, id, g); err != nil {
		return StartResult{}, err
	}
	s.log.Debug().Str("game", id).Str("mode", string(mode)).Msg("game started")
	return StartResult{GameID: id, MaxRounds: g.match.MaxRounds, Mode: mode}, nil
}

// GuessResult answers Guess. CandidatesRemaining is set in cheat mode only.
type GuessResult struct {
	Evaluation          game.Evaluation `json:"evaluation"`
	GameStatus          game.Status     `json:"gameStatus"`
	Answer              string          `json:"answer,omitempty"`
	CandidatesRemaining *int            `json:"candidatesRemaining,omitempty"`
}

func (s *Service) lock(ctx context.Context, id string) (*Game, error) {
	g, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, game.NotFound("Game not found")
	}
	g.mu.Lock()
	if g.gone {
		g.mu.Unlock()
		return nil, game.NotFound("Game not found")
	}
	return g, nil
}

// Guess submits one guess. Validation may reach the network, so the game is
// checked, unlocked for validation, then relocked and checked again.
func (s *Service) Guess(ctx context.Context, id, raw string) (GuessResult, error) {
	word, err := game.Normalize(raw)
	if err != nil {
		return GuessResult{}, err
	}

	g, err := s.lock(ctx, id)
	if err != nil {
		return GuessResult{}, err
	}
	finished := g.match.Finished()
	g.mu.Unlock()
	if finished {
		return GuessResult{}, game.Conflict("Game is already finished")
	}

	if err := s.validator.Validate(ctx, word); err != nil {
		return GuessResult{}, err
	}

	g, err = s.lock(ctx, id)
	if err != nil {
		return GuessResult{}, err
	}
	var ev game.Evaluation
	if g.host != nil && !g.match.Finished() {
		g.match.Answer, ev = g.host.Reveal(word)
	} else {
		ev = game.Evaluate(word, g.match.Answer)
	}
	status, err := g.match.Apply(word, ev)
	if err != nil {
		g.mu.Unlock()
		return GuessResult{}, err
	}
	res := GuessResult{
		Evaluation: ev,
		GameStatus: status,
		Answer:     g.match.RevealedAnswer(),
	}
	if g.host != nil {
		n := g.host.Remaining()
		res.CandidatesRemaining = &n
	}
	var rec *history.Result
	if g.match.Finished() {
		rec = &history.Result{
			MatchID:    g.match.ID,
			Mode:       string(g.mode),
			PlayerName: "anonymous",
			Status:     status,
			Guesses:    len(g.match.Guesses),
			Answer:     g.match.Answer,
			FinishedAt: s.now(),
		}
	}
	g.mu.Unlock()

	if rec != nil && s.recorder != nil {
		if err := s.recorder.Record(context.WithoutCancel(ctx), *rec); err != nil {
			s.log.Warn().Err(err).Str("game", id).Msg("failed to record result")
		}
	}
	return res, nil
}

// State is the public view of a board.
type State struct {
	GameID              string       `json:"gameId"`
	Mode                Mode         `json:"mode"`
	GameStatus          game.Status  `json:"gameStatus"`
	Guesses             []game.Guess `json:"guesses"`
	MaxRounds           int          `json:"maxRounds"`
	Answer              string       `json:"answer,omitempty"`
	CandidatesRemaining *int         `json:"candidatesRemaining,omitempty"`
}

// Get returns the board. The answer is present only once finished.
func (s *Service) Get(ctx context.Context, id string) (State, error) {
	g, err := s.lock(ctx, id)
	if err != nil {
		return State{}, err
	}
	defer g.mu.Unlock()
	st := State{
		GameID:     g.match.ID,
		Mode:       g.mode,
		GameStatus: g.match.Status,
		Guesses:    append([]game.Guess{}, g.match.Guesses...),
		MaxRounds:  g.match.MaxRounds,
		Answer:     g.match.RevealedAnswer(),
	}
	if g.host != nil {
		n := g.host.Remaining()
		st.CandidatesRemaining = &n
	}
	return st, nil
}

// Reap deletes finished or expired games and returns how many were removed.
func (s *Service) Reap(ctx context.Context, now time.Time) int {
	n := 0
	for _, id := range store.Expired(s.games.Snapshot(ctx), now, s.ttl) {
		g, err := s.games.Get(ctx, id)
		if err != nil {
			continue
		}
		g.mu.Lock()
		if !g.gone && (g.match.Finished() || now.Sub(g.match.CreatedAt) > s.ttl) {
			g.gone = true
			_ = s.games.Delete(ctx, id)
			n++
		}
		g.mu.Unlock()
	}
	if n > 0 {
		s.log.Info().Int("removed", n).Msg("reaped games")
	}
	return n
}

// Len returns the number of live games.
func (s *Service) Len() int { return s.games.Len() }
