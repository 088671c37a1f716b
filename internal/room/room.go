// internal/room/room.go
//
// Room and player records for two-player matches.
//
// Lifecycle:
//
//	waiting ──(2 players, all ready)──▶ playing ──(a win, or every board lost)──▶ finished
//
// A room is deleted when its last player leaves or when the reaper finds it
// finished or older than the TTL. Every field below mu is guarded by mu.
package room

import (
	"sync"
	"time"

	"github.com/lvyin1122/wordle/internal/game"
)

// Capacity is the fixed number of players per room.
const Capacity = 2

// Status is the room-level state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Player is owned by exactly one Room. All fields are valid from construction.
type Player struct {
	ID        string
	Name      string
	IsReady   bool
	IsHost    bool
	Coins     int
	Discovery game.Discovery
	Match     game.Match
}

func newPlayer(id, name string, host bool) *Player {
	return &Player{ID: id, Name: name, IsHost: host}
}

// reset clears per-match state. Called on game start and when the room falls
// back to waiting.
func (p *Player) reset() {
	p.Coins = 0
	p.Discovery = game.Discovery{}
	p.Match = game.Match{}
}

// Room is a match container.
type Room struct {
	mu sync.Mutex

	id        string
	status    Status
	players   []*Player
	answer    string
	matchID   string
	maxRounds int
	winner    string
	createdAt time.Time
	gone      bool // removed from the store; operations must treat it as unknown
}

func newRoom(id string, host *Player, maxRounds int, now time.Time) *Room {
	return &Room{
		id:        id,
		status:    StatusWaiting,
		players:   []*Player{host},
		maxRounds: maxRounds,
		createdAt: now,
	}
}

// Age implements store.Aged.
func (r *Room) Age() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createdAt, r.status == StatusFinished
}

func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) full() bool { return len(r.players) >= Capacity }

func (r *Room) allReady() bool {
	if len(r.players) != Capacity {
		return false
	}
	for _, p := range r.players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// requirePlaying returns the conflict for any status other than playing.
func (r *Room) requirePlaying() error {
	switch r.status {
	case StatusPlaying:
		return nil
	case StatusFinished:
		return game.Conflict("Game is already finished")
	}
	return game.Conflict("Game has not started")
}

func (r *Room) start(answer, matchID string, now time.Time) {
	r.answer = answer
	r.matchID = matchID
	r.winner = ""
	r.status = StatusPlaying
	for _, p := range r.players {
		p.reset()
		p.Match = game.NewMatch(matchID, answer, r.maxRounds, now)
	}
}

// settle updates the room after p's board changed. It reports whether the
// room just finished.
func (r *Room) settle(p *Player) bool {
	switch p.Match.Status {
	case game.StatusWon:
		r.winner = p.Name
		for _, o := range r.players {
			if o != p {
				o.Match.Forfeit()
			}
		}
		r.status = StatusFinished
		return true
	case game.StatusLost:
		for _, o := range r.players {
			if o.Match.Status != game.StatusLost {
				return false
			}
		}
		r.status = StatusFinished
		return true
	}
	return false
}

// remove drops the player and returns how many remain.
func (r *Room) remove(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	if len(r.players) == 1 {
		r.status = StatusWaiting
		r.answer, r.matchID, r.winner = "", "", ""
		survivor := r.players[0]
		survivor.IsHost = true
		survivor.IsReady = false
		survivor.reset()
	}
	return len(r.players)
}

// PlayerView is the public projection of a player.
type PlayerView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	IsReady    bool        `json:"isReady"`
	IsHost     bool        `json:"isHost"`
	GameStatus game.Status `json:"gameStatus,omitempty"`
	GuessCount int         `json:"guessCount"`
	Coins      int         `json:"coins"`
}

// View is a consistent snapshot of a room.
type View struct {
	RoomID     string       `json:"roomId"`
	Status     Status       `json:"status"`
	Players    []PlayerView `json:"players"`
	MaxPlayers int          `json:"maxPlayers"`
	MaxRounds  int          `json:"maxRounds"`
	Winner     string       `json:"winnerName,omitempty"`
	Answer     string       `json:"answer,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (r *Room) view() View {
	v := View{
		RoomID:     r.id,
		Status:     r.status,
		Players:    make([]PlayerView, 0, len(r.players)),
		MaxPlayers: Capacity,
		MaxRounds:  r.maxRounds,
		Winner:     r.winner,
		CreatedAt:  r.createdAt,
	}
	if r.status == StatusFinished {
		v.Answer = r.answer
	}
	for _, p := range r.players {
		v.Players = append(v.Players, PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			IsReady:    p.IsReady,
			IsHost:     p.IsHost,
			GameStatus: p.Match.Status,
			GuessCount: len(p.Match.Guesses),
			Coins:      p.Coins,
		})
	}
	return v
}

// Board is one player's private view of their own match.
type Board struct {
	PlayerID   string       `json:"playerId"`
	Name       string       `json:"name"`
	RoomStatus Status       `json:"roomStatus"`
	GameStatus game.Status  `json:"gameStatus,omitempty"`
	Guesses    []game.Guess `json:"guesses"`
	MaxRounds  int          `json:"maxRounds"`
	Coins      int          `json:"coins"`
	Answer     string       `json:"answer,omitempty"`
	game.Discovery
}

func (r *Room) board(p *Player) Board {
	b := Board{
		PlayerID:   p.ID,
		Name:       p.Name,
		RoomStatus: r.status,
		GameStatus: p.Match.Status,
		Guesses:    append([]game.Guess{}, p.Match.Guesses...),
		MaxRounds:  r.maxRounds,
		Coins:      p.Coins,
		Answer:     p.Match.RevealedAnswer(),
		Discovery:  p.Discovery,
	}
	return b
}
