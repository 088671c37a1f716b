// internal/room/manager.go
//
// Manager runs every room operation.
//
// Concurrency:
//   - The store guards the room index; each Room guards its own state with mu.
//   - Lock order is room → store. The store lock is never held while taking a room lock.
//   - Notifications and history writes happen after the room lock is released.
//   - Guess validation may call the network, so SubmitGuess checks state, unlocks,
//     validates, then relocks and checks again before mutating.
package room

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lvyin1122/wordle/internal/game"
	"github.com/lvyin1122/wordle/internal/history"
	"github.com/lvyin1122/wordle/internal/store"
)

const maxNameLen = 20

var roomIDPattern = regexp.MustCompile(`^\d{4}$`)

// Dictionary draws answers.
type Dictionary interface {
	Random(rng game.Rand) string
}

// Validator accepts or rejects a normalized guess.
type Validator interface {
	Validate(ctx context.Context, word string) error
}

// Recorder persists finished matches.
type Recorder interface {
	Record(ctx context.Context, r history.Result) error
}

// Config holds the manager's collaborators and tunables. Notifier, Recorder,
// Now and NewID are optional.
type Config struct {
	Store     store.Store[*Room]
	Dict      Dictionary
	Validator Validator
	Notifier  Notifier
	Recorder  Recorder
	Rand      game.Rand
	MaxRounds int
	TTL       time.Duration
	Now       func() time.Time
	NewID     func() string
	Logger    zerolog.Logger
}

// Manager is the room service.
type Manager struct {
	rooms     store.Store[*Room]
	dict      Dictionary
	validator Validator
	notify    Notifier
	recorder  Recorder
	rng       game.Rand
	maxRounds int
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// NewManager builds a Manager from cfg, filling defaults.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		rooms:     cfg.Store,
		dict:      cfg.Dict,
		validator: cfg.Validator,
		notify:    cfg.Notifier,
		recorder:  cfg.Recorder,
		rng:       cfg.Rand,
		maxRounds: cfg.MaxRounds,
		ttl:       cfg.TTL,
		now:       cfg.Now,
		newID:     cfg.NewID,
		log:       cfg.Logger.With().Str("component", "room").Logger(),
	}
	if m.rooms == nil {
		m.rooms = store.NewMemoryStore[*Room]()
	}
	if m.notify == nil {
		m.notify = nopNotifier{}
	}
	if m.maxRounds <= 0 {
		m.maxRounds = game.DefaultMaxRounds
	}
	if m.ttl <= 0 {
		m.ttl = time.Hour
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

// SetNotifier replaces the notifier. The socket hub is built after the
// manager, so main wires it here before serving.
func (m *Manager) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	m.notify = n
}

// JoinResult answers create and join.
type JoinResult struct {
	View
	PlayerID string `json:"playerId"`
	IsHost   bool   `json:"isHost"`
}

func validateRoomID(id string) error {
	if !roomIDPattern.MatchString(id) {
		return game.Validation("Room ID must be a 4-digit number")
	}
	return nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", game.Validation("Player name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", game.Validation("Player name must be at most 20 characters")
	}
	return name, nil
}

// lock fetches and locks a live room. The caller must unlock.
func (m *Manager) lock(ctx context.Context, roomID string) (*Room, error) {
	r, err := m.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, game.NotFound("Room not found")
	}
	r.mu.Lock()
	if r.gone {
		r.mu.Unlock()
		return nil, game.NotFound("Room not found")
	}
	return r, nil
}

// CreateRoom opens roomID with the caller as host.
func (m *Manager) CreateRoom(ctx context.Context, roomID, playerName string) (JoinResult, error) {
	if err := validateRoomID(roomID); err != nil {
		return JoinResult{}, err
	}
	name, err := normalizeName(playerName)
	if err != nil {
		return JoinResult{}, err
	}

	host := newPlayer(m.newID(), name, true)
	r := newRoom(roomID, host, m.maxRounds, m.now())
	r.mu.Lock()
	if err := m.rooms.Create(ctx, roomID, r); err != nil {
		r.mu.Unlock()
		if errors.Is(err, store.ErrExists) {
			return JoinResult{}, game.Conflict("Room already exists")
		}
		return JoinResult{}, err
	}
	v := r.view()
	r.mu.Unlock()

	m.log.Info().Str("room", roomID).Str("player", host.ID).Msg("room created")
	m.notify.BroadcastToRoom(roomID, EventRoomUpdated, v)
	return JoinResult{View: v, PlayerID: host.ID, IsHost: true}, nil
}

// JoinRoom adds a second player to a waiting room.
func (m *Manager) JoinRoom(ctx context.Context, roomID, playerName string) (JoinResult, error) {
	if err := validateRoomID(roomID); err != nil {
		return JoinResult{}, err
	}
	name, err := normalizeName(playerName)
	if err != nil {
		return JoinResult{}, err
	}

	r, err := m.lock(ctx, roomID)
	if err != nil {
		return JoinResult{}, err
	}
	if r.full() {
		r.mu.Unlock()
		return JoinResult{}, game.Conflict("Room is full")
	}
	if r.status != StatusWaiting {
		r.mu.Unlock()
		return JoinResult{}, game.Conflict("Game already in progress")
	}
	p := newPlayer(m.newID(), name, false)
	r.players = append(r.players, p)
	v := r.view()
	r.mu.Unlock()

	m.log.Info().Str("room", roomID).Str("player", p.ID).Msg("player joined")
	m.notify.BroadcastToRoom(roomID, EventRoomUpdated, v)
	return JoinResult{View: v, PlayerID: p.ID}, nil
}

// SetReady flips a player's ready flag and starts the match when the room is
// full and everyone is ready.
func (m *Manager) SetReady(ctx context.Context, roomID, playerID string, ready bool) (View, error) {
	r, err := m.lock(ctx, roomID)
	if err != nil {
		return View{}, err
	}
	p := r.player(playerID)
	if p == nil {
		r.mu.Unlock()
		return View{}, game.NotFound("Player not found")
	}
	if r.status != StatusWaiting {
		r.mu.Unlock()
		return View{}, game.Conflict("Game already in progress")
	}

	var out outbox
	p.IsReady = ready
	started := false
	if r.allReady() {
		r.start(m.dict.Random(m.rng), m.newID(), m.now())
		started = true
	}
	v := r.view()
	out.broadcast(roomID, EventRoomUpdated, v)
	if started {
		out.broadcast(roomID, EventGameStart, GameStartPayload{RoomID: roomID, MaxRounds: r.maxRounds})
	}
	r.mu.Unlock()

	if started {
		m.log.Info().Str("room", roomID).Msg("match started")
	}
	out.flush(m.notify)
	return v, nil
}

// GuessResult answers a multiplayer guess.
type GuessResult struct {
	Evaluation   game.Evaluation `json:"evaluation"`
	GameStatus   game.Status     `json:"gameStatus"`
	RoomStatus   Status          `json:"roomStatus"`
	Answer       string          `json:"answer,omitempty"`
	WinnerName   string          `json:"winnerName,omitempty"`
	CoinsEarned  int             `json:"coinsEarned"`
	Coins        int             `json:"coins"`
	NewlyPresent []string        `json:"newlyPresent"`
	NewlyCorrect []string        `json:"newlyCorrect"`
	NewlyAbsent  []string        `json:"newlyAbsent"`
}

// guessable checks that p may guess right now.
func (r *Room) guessable(playerID string) (*Player, error) {
	p := r.player(playerID)
	if p == nil {
		return nil, game.NotFound("Player not found")
	}
	if err := r.requirePlaying(); err != nil {
		return nil, err
	}
	if p.Match.Finished() {
		return nil, game.Conflict("Match already finished")
	}
	return p, nil
}

// SubmitGuess evaluates a guess on the player's own board.
func (m *Manager) SubmitGuess(ctx context.Context, roomID, playerID, raw string) (GuessResult, error) {
	word, err := game.Normalize(raw)
	if err != nil {
		return GuessResult{}, err
	}

	r, err := m.lock(ctx, roomID)
	if err != nil {
		return GuessResult{}, err
	}
	_, err = r.guessable(playerID)
	r.mu.Unlock()
	if err != nil {
		return GuessResult{}, err
	}

	if err := m.validator.Validate(ctx, word); err != nil {
		return GuessResult{}, err
	}

	r, err = m.lock(ctx, roomID)
	if err != nil {
		return GuessResult{}, err
	}
	p, err := r.guessable(playerID)
	if err != nil {
		r.mu.Unlock()
		return GuessResult{}, err
	}

	led := p.Discovery.ApplyGuess(word, r.answer)
	p.Coins += led.CoinsEarned
	status, err := p.Match.Apply(word, led.Evaluation)
	if err != nil {
		r.mu.Unlock()
		return GuessResult{}, err
	}
	finished := r.settle(p)

	res := GuessResult{
		Evaluation:   led.Evaluation,
		GameStatus:   status,
		RoomStatus:   r.status,
		Answer:       p.Match.RevealedAnswer(),
		WinnerName:   r.winner,
		CoinsEarned:  led.CoinsEarned,
		Coins:        p.Coins,
		NewlyPresent: led.NewlyPresent,
		NewlyCorrect: led.NewlyCorrect,
		NewlyAbsent:  led.NewlyAbsent,
	}

	var out outbox
	out.send(roomID, playerID, EventGuessResult, res)
	out.broadcast(roomID, EventRoomUpdated, r.view())
	var results []history.Result
	if finished {
		over := r.gameOver()
		out.broadcast(roomID, EventGameOver, over)
		results = r.results(m.now())
	}
	r.mu.Unlock()

	out.flush(m.notify)
	if finished {
		m.log.Info().Str("room", roomID).Str("winner", res.WinnerName).Msg("match finished")
		m.record(ctx, results)
	}
	return res, nil
}

func (r *Room) gameOver() GameOverPayload {
	o := GameOverPayload{
		RoomID:     r.id,
		WinnerName: r.winner,
		Answer:     r.answer,
		Players:    make([]FinalStatus, 0, len(r.players)),
	}
	for _, p := range r.players {
		o.Players = append(o.Players, FinalStatus{
			ID:         p.ID,
			Name:       p.Name,
			GameStatus: p.Match.Status,
			Guesses:    len(p.Match.Guesses),
		})
	}
	return o
}

func (r *Room) results(now time.Time) []history.Result {
	out := make([]history.Result, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, history.Result{
			MatchID:    r.matchID,
			Mode:       history.ModeMultiplayer,
			RoomID:     r.id,
			PlayerName: p.Name,
			Status:     p.Match.Status,
			Guesses:    len(p.Match.Guesses),
			Answer:     r.answer,
			Coins:      p.Coins,
			FinishedAt: now,
		})
	}
	return out
}

func (m *Manager) record(ctx context.Context, results []history.Result) {
	if m.recorder == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, res := range results {
		if err := m.recorder.Record(ctx, res); err != nil {
			m.log.Warn().Err(err).Str("match", res.MatchID).Msg("failed to record result")
		}
	}
}

// AttackOutcome answers an attack.
type AttackOutcome struct {
	game.AttackResult
	AttackerCoins int `json:"attackerCoins"`
}

// SubmitAttack charges the attacker and resolves the attack on the target.
// The cost is paid even when no letter is eligible.
func (m *Manager) SubmitAttack(ctx context.Context, roomID, attackerID, targetID string, kind game.AttackType) (AttackOutcome, error) {
	cost, err := kind.Cost()
	if err != nil {
		return AttackOutcome{}, err
	}
	if attackerID == targetID {
		return AttackOutcome{}, game.Validation("Cannot attack yourself")
	}

	r, err := m.lock(ctx, roomID)
	if err != nil {
		return AttackOutcome{}, err
	}
	attacker := r.player(attackerID)
	if attacker == nil {
		r.mu.Unlock()
		return AttackOutcome{}, game.NotFound("Player not found")
	}
	target := r.player(targetID)
	if target == nil {
		r.mu.Unlock()
		return AttackOutcome{}, game.NotFound("Target player not found")
	}
	if err := r.requirePlaying(); err != nil {
		r.mu.Unlock()
		return AttackOutcome{}, err
	}
	if attacker.Coins < cost {
		r.mu.Unlock()
		return AttackOutcome{}, game.Insufficient("Not enough coins")
	}

	attacker.Coins -= cost
	res := game.ExecuteAttack(kind, &target.Discovery, m.rng)
	outcome := AttackOutcome{AttackResult: res, AttackerCoins: attacker.Coins}

	var out outbox
	out.broadcast(roomID, EventAttack, AttackPayload{
		AttackerID:   attackerID,
		TargetID:     targetID,
		AttackType:   kind,
		AttackResult: res,
	})
	out.broadcast(roomID, EventRoomUpdated, r.view())
	r.mu.Unlock()

	m.log.Debug().Str("room", roomID).Str("attack", string(kind)).Bool("success", res.Success).Msg("attack resolved")
	out.flush(m.notify)
	return outcome, nil
}

// LeaveRoom removes the player. The last player out deletes the room; a lone
// survivor becomes host of a waiting room.
func (m *Manager) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	r, err := m.lock(ctx, roomID)
	if err != nil {
		return err
	}
	if r.player(playerID) == nil {
		r.mu.Unlock()
		return game.NotFound("Player not found")
	}

	var out outbox
	if r.remove(playerID) == 0 {
		r.gone = true
		_ = m.rooms.Delete(ctx, roomID)
		out.broadcast(roomID, EventRoomDeleted, RoomDeletedPayload{RoomID: roomID})
		out.disconnect(roomID)
	} else {
		out.broadcast(roomID, EventRoomUpdated, r.view())
	}
	r.mu.Unlock()

	m.log.Info().Str("room", roomID).Str("player", playerID).Msg("player left")
	out.flush(m.notify)
	return nil
}

// Room returns a snapshot.
func (m *Manager) Room(ctx context.Context, roomID string) (View, error) {
	r, err := m.lock(ctx, roomID)
	if err != nil {
		return View{}, err
	}
	defer r.mu.Unlock()
	return r.view(), nil
}

// PlayerBoard returns the player's own board and discovery sets.
func (m *Manager) PlayerBoard(ctx context.Context, roomID, playerID string) (Board, error) {
	r, err := m.lock(ctx, roomID)
	if err != nil {
		return Board{}, err
	}
	defer r.mu.Unlock()
	p := r.player(playerID)
	if p == nil {
		return Board{}, game.NotFound("Player not found")
	}
	return r.board(p), nil
}

// Reap deletes rooms that are finished or older than the TTL and returns how
// many were removed.
func (m *Manager) Reap(ctx context.Context, now time.Time) int {
	n := 0
	for _, id := range store.Expired(m.rooms.Snapshot(ctx), now, m.ttl) {
		r, err := m.rooms.Get(ctx, id)
		if err != nil {
			continue
		}
		r.mu.Lock()
		if r.gone || (r.status != StatusFinished && now.Sub(r.createdAt) <= m.ttl) {
			r.mu.Unlock()
			continue
		}
		r.gone = true
		_ = m.rooms.Delete(ctx, id)
		r.mu.Unlock()

		n++
		m.notify.BroadcastToRoom(id, EventRoomDeleted, RoomDeletedPayload{RoomID: id})
		m.notify.DisconnectRoom(id)
	}
	if n > 0 {
		m.log.Info().Int("removed", n).Msg("reaped rooms")
	} else {
		m.log.Debug().Msg("reaper sweep found nothing")
	}
	return n
}

// Len returns the number of live rooms.
func (m *Manager) Len() int { return m.rooms.Len() }
