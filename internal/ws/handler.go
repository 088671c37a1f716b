package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lvyin1122/wordle/internal/auth"
	"github.com/lvyin1122/wordle/internal/game"
	"github.com/lvyin1122/wordle/internal/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	commandTimeout = 10 * time.Second
)

// Client → server command types.
const (
	CmdSetReady     = "set-ready"
	CmdSubmitGuess  = "submit-guess"
	CmdSubmitAttack = "submit-attack"
	CmdLeaveRoom    = "leave-room"
)

// Rooms is the subset of room.Manager the socket layer drives.
type Rooms interface {
	Room(ctx context.Context, roomID string) (room.View, error)
	SetReady(ctx context.Context, roomID, playerID string, ready bool) (room.View, error)
	SubmitGuess(ctx context.Context, roomID, playerID, raw string) (room.GuessResult, error)
	SubmitAttack(ctx context.Context, roomID, attackerID, targetID string, kind game.AttackType) (room.AttackOutcome, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error
}

// Tickets verifies player tickets.
type Tickets interface {
	Parse(token string) (*auth.Claims, error)
}

type setReadyPayload struct {
	IsReady bool `json:"isReady"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

type attackPayload struct {
	TargetID   string          `json:"targetId"`
	AttackType game.AttackType `json:"attackType"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Handler upgrades GET /ws?token=... and pumps frames for one seat.
type Handler struct {
	hub      *Hub
	rooms    Rooms
	tickets  Tickets
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHandler wires the socket endpoint. checkOrigin may be nil to allow any origin.
func NewHandler(hub *Hub, rooms Rooms, tickets Tickets, checkOrigin func(*http.Request) bool, log zerolog.Logger) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub:     hub,
		rooms:   rooms,
		tickets: tickets,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tickets.Parse(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	view, err := h.rooms.Room(r.Context(), claims.RoomID)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	seated := false
	for _, p := range view.Players {
		if p.ID == claims.PlayerID {
			seated = true
			break
		}
	}
	if !seated {
		http.Error(w, "player not in room", http.StatusForbidden)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := NewConnection(claims.RoomID, claims.PlayerID)
	h.hub.Register(conn)
	h.hub.send(conn, room.EventRoomUpdated, view)
	h.log.Info().Str("room", conn.RoomID).Str("player", conn.PlayerID).Msg("socket connected")

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// readPump dispatches commands until the socket closes. A socket that closes
// while still registered counts as leaving the room.
func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		if h.hub.Unregister(conn) {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			if err := h.rooms.LeaveRoom(ctx, conn.RoomID, conn.PlayerID); err != nil && !errors.Is(err, game.ErrNotFound) {
				h.log.Warn().Err(err).Str("room", conn.RoomID).Msg("leave on disconnect")
			}
		}
		_ = wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("room", conn.RoomID).Msg("websocket read error")
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.hub.send(conn, room.EventError, errorPayload{Message: "Malformed message"})
			continue
		}
		if leave := h.dispatch(conn, msg); leave {
			return
		}
	}
}

// dispatch runs one command and reports whether the seat left.
func (h *Handler) dispatch(conn *Connection, msg Message) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case CmdSetReady:
		var p setReadyPayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.rooms.SetReady(ctx, conn.RoomID, conn.PlayerID, p.IsReady)
		}
	case CmdSubmitGuess:
		var p guessPayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.rooms.SubmitGuess(ctx, conn.RoomID, conn.PlayerID, p.Guess)
		}
	case CmdSubmitAttack:
		var p attackPayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.rooms.SubmitAttack(ctx, conn.RoomID, conn.PlayerID, p.TargetID, p.AttackType)
		}
	case CmdLeaveRoom:
		h.hub.Unregister(conn)
		if err := h.rooms.LeaveRoom(ctx, conn.RoomID, conn.PlayerID); err != nil && !errors.Is(err, game.ErrNotFound) {
			h.log.Warn().Err(err).Str("room", conn.RoomID).Msg("leave room")
		}
		return true
	default:
		err = game.Validation("Unknown message type")
	}

	if err != nil {
		h.hub.send(conn, room.EventError, errorPayload{Message: clientMessage(err)})
	}
	return false
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return game.Validation("Missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return game.Validation("Malformed payload")
	}
	return nil
}

func clientMessage(err error) string {
	var de *game.Error
	if errors.As(err, &de) {
		return de.Msg
	}
	return "Internal error"
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			_ = wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
