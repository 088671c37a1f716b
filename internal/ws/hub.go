// internal/ws/hub.go
//
// Hub tracks one socket per (room, player) seat and fans room events out to
// them. It implements room.Notifier.
//
// Sends never block: each connection has a buffered Send channel and a full
// buffer drops the message. All map access and every close of a Send channel
// happen under mu, so a send can never race a close and events reach sockets
// in the order they were emitted.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

const sendBuffer = 64

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection is one registered socket.
type Connection struct {
	RoomID   string
	PlayerID string
	Send     chan []byte
}

// NewConnection allocates a connection for a seat.
func NewConnection(roomID, playerID string) *Connection {
	return &Connection{RoomID: roomID, PlayerID: playerID, Send: make(chan []byte, sendBuffer)}
}

// Hub manages connections per room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Connection // roomID -> playerID -> conn
	log   zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*Connection),
		log:   log.With().Str("component", "ws").Logger(),
	}
}

// Register adds c, replacing (and closing) any previous socket for the seat.
func (h *Hub) Register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	players := h.rooms[c.RoomID]
	if players == nil {
		players = make(map[string]*Connection)
		h.rooms[c.RoomID] = players
	}
	if old, ok := players[c.PlayerID]; ok {
		close(old.Send)
	}
	players[c.PlayerID] = c
	h.log.Debug().Str("room", c.RoomID).Str("player", c.PlayerID).Msg("socket registered")
}

// Unregister removes c if it is still the seat's current socket and reports
// whether it was.
func (h *Hub) Unregister(c *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	players, ok := h.rooms[c.RoomID]
	if !ok || players[c.PlayerID] != c {
		return false
	}
	delete(players, c.PlayerID)
	if len(players) == 0 {
		delete(h.rooms, c.RoomID)
	}
	close(c.Send)
	h.log.Debug().Str("room", c.RoomID).Str("player", c.PlayerID).Msg("socket unregistered")
	return true
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}

func (h *Hub) deliver(c *Connection, data []byte) {
	select {
	case c.Send <- data:
	default:
		h.log.Warn().Str("room", c.RoomID).Str("player", c.PlayerID).Msg("send buffer full, dropping message")
	}
}

// BroadcastToRoom sends to every socket in the room.
func (h *Hub) BroadcastToRoom(roomID, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("encode message")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[roomID] {
		h.deliver(c, data)
	}
}

// SendToPlayer sends to one seat.
func (h *Hub) SendToPlayer(roomID, playerID, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("encode message")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.rooms[roomID][playerID]; ok {
		h.deliver(c, data)
	}
}

// send delivers to c directly if it is still registered.
func (h *Hub) send(c *Connection, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("encode message")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.rooms[c.RoomID][c.PlayerID] == c {
		h.deliver(c, data)
	}
}

// DisconnectRoom closes every socket in the room.
func (h *Hub) DisconnectRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.rooms[roomID] {
		close(c.Send)
	}
	delete(h.rooms, roomID)
}

// Close disconnects everything. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, players := range h.rooms {
		for _, c := range players {
			close(c.Send)
		}
		delete(h.rooms, id)
	}
}

// Count returns the number of registered sockets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, players := range h.rooms {
		n += len(players)
	}
	return n
}
