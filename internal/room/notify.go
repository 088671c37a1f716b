package room

import "github.com/lvyin1122/wordle/internal/game"

// Event types pushed to room members.
const (
	EventRoomUpdated = "room-updated"
	EventGameStart   = "game-start"
	EventGuessResult = "guess-result"
	EventGameOver    = "game-over"
	EventAttack      = "attack"
	EventRoomDeleted = "room-deleted"
	EventError       = "error"
)

// Notifier delivers events to connected clients. Implementations must not
// block; the manager calls them after releasing the room lock.
type Notifier interface {
	BroadcastToRoom(roomID, msgType string, payload any)
	SendToPlayer(roomID, playerID, msgType string, payload any)
	DisconnectRoom(roomID string)
}

type nopNotifier struct{}

func (nopNotifier) BroadcastToRoom(string, string, any)      {}
func (nopNotifier) SendToPlayer(string, string, string, any) {}
func (nopNotifier) DisconnectRoom(string)                    {}

// GameStartPayload is sent with game-start.
type GameStartPayload struct {
	RoomID    string `json:"roomId"`
	MaxRounds int    `json:"maxRounds"`
}

// FinalStatus is one line of the game-over roster.
type FinalStatus struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	GameStatus game.Status `json:"gameStatus"`
	Guesses    int         `json:"guesses"`
}

// GameOverPayload is sent with game-over.
type GameOverPayload struct {
	RoomID     string        `json:"roomId"`
	WinnerName string        `json:"winnerName,omitempty"`
	Answer     string        `json:"answer"`
	Players    []FinalStatus `json:"players"`
}

// AttackPayload is sent with attack.
type AttackPayload struct {
	AttackerID string          `json:"attackerId"`
	TargetID   string          `json:"targetId"`
	AttackType game.AttackType `json:"attackType"`
	game.AttackResult
}

// RoomDeletedPayload is sent with room-deleted.
type RoomDeletedPayload struct {
	RoomID string `json:"roomId"`
}

// outbox collects events under the room lock for delivery after unlock.
type outbox []func(Notifier)

func (o *outbox) broadcast(roomID, typ string, payload any) {
	*o = append(*o, func(n Notifier) { n.BroadcastToRoom(roomID, typ, payload) })
}

func (o *outbox) send(roomID, playerID, typ string, payload any) {
	*o = append(*o, func(n Notifier) { n.SendToPlayer(roomID, playerID, typ, payload) })
}

func (o *outbox) disconnect(roomID string) {
	*o = append(*o, func(n Notifier) { n.DisconnectRoom(roomID) })
}

func (o outbox) flush(n Notifier) {
	for _, f := range o {
		f(n)
	}
}
