package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyin1122/wordle/internal/auth"
	"github.com/lvyin1122/wordle/internal/game"
	"github.com/lvyin1122/wordle/internal/room"
)

type fixedDict string

func (d fixedDict) Random(game.Rand) string { return string(d) }

type okValidator struct{}

func (okValidator) Validate(context.Context, string) error { return nil }

func TestHubDelivery(t *testing.T) {
	h := NewHub(zerolog.Nop())
	a := NewConnection("1234", "a")
	b := NewConnection("1234", "b")
	other := NewConnection("9999", "c")
	h.Register(a)
	h.Register(b)
	h.Register(other)
	assert.Equal(t, 3, h.Count())

	h.BroadcastToRoom("1234", "room-updated", map[string]string{"roomId": "1234"})
	h.SendToPlayer("1234", "b", "guess-result", map[string]int{"coins": 2})

	var msg Message
	require.NoError(t, json.Unmarshal(<-a.Send, &msg))
	assert.Equal(t, "room-updated", msg.Type)
	assert.JSONEq(t, `{"roomId":"1234"}`, string(msg.Payload))
	<-b.Send
	require.NoError(t, json.Unmarshal(<-b.Send, &msg))
	assert.Equal(t, "guess-result", msg.Type)
	assert.Empty(t, other.Send)

	// a second socket for the same seat replaces the first
	a2 := NewConnection("1234", "a")
	h.Register(a2)
	_, open := <-a.Send
	assert.False(t, open)
	assert.False(t, h.Unregister(a))
	assert.True(t, h.Unregister(a2))

	h.DisconnectRoom("1234")
	_, open = <-b.Send
	assert.False(t, open)
	assert.Equal(t, 1, h.Count())

	h.Close()
	assert.Zero(t, h.Count())
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := NewConnection("1234", "a")
	h.Register(c)
	for i := 0; i < sendBuffer+10; i++ {
		h.SendToPlayer("1234", "a", "x", i)
	}
	assert.Len(t, c.Send, sendBuffer)
}

type harness struct {
	srv     *httptest.Server
	mgr     *room.Manager
	tickets *auth.Issuer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	mgr := room.NewManager(room.Config{
		Dict:      fixedDict("CRANE"),
		Validator: okValidator{},
		Notifier:  hub,
		Rand:      game.NewRand(1),
		Logger:    zerolog.Nop(),
	})
	tickets := auth.NewIssuer("test-secret", time.Hour)
	srv := httptest.NewServer(NewHandler(hub, mgr, tickets, nil, zerolog.Nop()))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &harness{srv: srv, mgr: mgr, tickets: tickets}
}

func (h *harness) dial(t *testing.T, roomID, playerID string) *websocket.Conn {
	t.Helper()
	tok, _, err := h.tickets.Issue(roomID, playerID)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws?token=" + tok
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// await reads frames until one of type typ arrives.
func await(t *testing.T, c *websocket.Conn, typ string) json.RawMessage {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg Message
		require.NoError(t, c.ReadJSON(&msg), "waiting for %s", typ)
		if msg.Type == typ {
			return msg.Payload
		}
	}
}

func send(t *testing.T, c *websocket.Conn, typ string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, c.WriteJSON(Message{Type: typ, Payload: raw}))
}

func TestSocketMatchFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, err := h.mgr.CreateRoom(ctx, "1234", "ann")
	require.NoError(t, err)
	b, err := h.mgr.JoinRoom(ctx, "1234", "bob")
	require.NoError(t, err)

	ca := h.dial(t, "1234", a.PlayerID)
	await(t, ca, room.EventRoomUpdated)
	cb := h.dial(t, "1234", b.PlayerID)
	await(t, cb, room.EventRoomUpdated)

	send(t, ca, CmdSetReady, setReadyPayload{IsReady: true})
	send(t, cb, CmdSetReady, setReadyPayload{IsReady: true})

	var start room.GameStartPayload
	require.NoError(t, json.Unmarshal(await(t, ca, room.EventGameStart), &start))
	assert.Equal(t, "1234", start.RoomID)
	await(t, cb, room.EventGameStart)

	send(t, ca, CmdSubmitGuess, guessPayload{Guess: "slate"})
	var res room.GuessResult
	require.NoError(t, json.Unmarshal(await(t, ca, room.EventGuessResult), &res))
	assert.Equal(t, 4, res.CoinsEarned)

	send(t, cb, CmdSubmitAttack, attackPayload{TargetID: a.PlayerID, AttackType: game.Punch})
	var e errorPayload
	require.NoError(t, json.Unmarshal(await(t, cb, room.EventError), &e))
	assert.Equal(t, "Not enough coins", e.Message)

	send(t, ca, CmdSubmitGuess, guessPayload{Guess: "crane"})
	var over room.GameOverPayload
	require.NoError(t, json.Unmarshal(await(t, cb, room.EventGameOver), &over))
	assert.Equal(t, "ann", over.WinnerName)
	assert.Equal(t, "CRANE", over.Answer)
}

func TestSocketCloseLeavesRoom(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, err := h.mgr.CreateRoom(ctx, "1234", "ann")
	require.NoError(t, err)
	b, err := h.mgr.JoinRoom(ctx, "1234", "bob")
	require.NoError(t, err)

	ca := h.dial(t, "1234", a.PlayerID)
	await(t, ca, room.EventRoomUpdated)
	cb := h.dial(t, "1234", b.PlayerID)
	await(t, cb, room.EventRoomUpdated)

	require.NoError(t, cb.Close())

	require.Eventually(t, func() bool {
		v, err := h.mgr.Room(ctx, "1234")
		return err == nil && len(v.Players) == 1
	}, 3*time.Second, 10*time.Millisecond)

	send(t, ca, CmdLeaveRoom, struct{}{})
	require.Eventually(t, func() bool {
		_, err := h.mgr.Room(ctx, "1234")
		return err != nil
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSocketRejectsBadTickets(t *testing.T) {
	h := newHarness(t)
	base := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	tok, _, err := h.tickets.Issue("1234", "ghost")
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+tok, nil)
	require.Error(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	_, err = h.mgr.CreateRoom(context.Background(), "1234", "ann")
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+tok, nil)
	require.Error(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}
