// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle backend.
// Responsibilities:
//   - Router + middleware (CORS, timeouts, panic recovery, request IDs, access log, rate limit).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Solo endpoints under /api/game, multiplayer endpoints under /api/multiplayer/room.
//   - Leaderboard from the match history store.
//   - The websocket endpoint /ws, authenticated by the ticket issued on create/join.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - Room routes that act for a player (ready, guess, attack, leave, board) require
//     "Authorization: Bearer <ticket>" naming that room and player: 401 without a valid
//     ticket, 403 for another seat's ticket. Create, join and room snapshots stay open.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/lvyin1122/wordle/internal/auth"
	"github.com/lvyin1122/wordle/internal/game"
	"github.com/lvyin1122/wordle/internal/history"
	"github.com/lvyin1122/wordle/internal/room"
	"github.com/lvyin1122/wordle/internal/solo"
)

// Rooms is the multiplayer service.
type Rooms interface {
	CreateRoom(ctx context.Context, roomID, playerName string) (room.JoinResult, error)
	JoinRoom(ctx context.Context, roomID, playerName string) (room.JoinResult, error)
	Room(ctx context.Context, roomID string) (room.View, error)
	SetReady(ctx context.Context, roomID, playerID string, ready bool) (room.View, error)
	SubmitGuess(ctx context.Context, roomID, playerID, raw string) (room.GuessResult, error)
	SubmitAttack(ctx context.Context, roomID, attackerID, targetID string, kind game.AttackType) (room.AttackOutcome, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error
	PlayerBoard(ctx context.Context, roomID, playerID string) (room.Board, error)
}

// Games is the single-player service.
type Games interface {
	Start(ctx context.Context, mode solo.Mode) (solo.StartResult, error)
	Guess(ctx context.Context, id, raw string) (solo.GuessResult, error)
	Get(ctx context.Context, id string) (solo.State, error)
}

// Leaderboard reads aggregated match history.
type Leaderboard interface {
	Leaderboard(ctx context.Context, mode string, limit int) ([]history.Row, error)
}

// Tickets issues and verifies player tickets.
type Tickets interface {
	Issue(roomID, playerID string) (string, time.Time, error)
	Parse(token string) (*auth.Claims, error)
}

// WordStats reports dictionary sizes.
type WordStats interface {
	Stats() (answersCount, allowedCount int)
}

// Deps bundles the server's collaborators. Socket may be nil to leave /ws unmounted.
type Deps struct {
	Rooms        Rooms
	Games        Games
	History      Leaderboard
	Tickets      Tickets
	Words        WordStats
	Socket       http.Handler
	ClientOrigin string
	RateLimit    int
	RateWindow   time.Duration
	Logger       zerolog.Logger
}

// Server bundles the router and its services.
type Server struct {
	r       *chi.Mux
	rooms   Rooms
	games   Games
	history Leaderboard
	tickets Tickets
	words   WordStats
	log     zerolog.Logger
}

const maxLeaderboard = 100

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		rooms:   d.Rooms,
		games:   d.Games,
		history: d.History,
		tickets: d.Tickets,
		words:   d.Words,
		log:     d.Logger.With().Str("component", "http").Logger(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger(s.log))
	s.r.Use(chimw.Recoverer)
	s.r.Use(corsFor(d.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordle",
			"endpoints": []string{"/health", "/api/game/*", "/api/multiplayer/room/*", "/api/stats/leaderboard", "/ws"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.words.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
	})

	s.r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		if d.RateLimit > 0 {
			r.Use(httprate.LimitByIP(d.RateLimit, d.RateWindow))
		}

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", s.handleSoloStart)
			r.Post("/{gameId}/guess", s.handleSoloGuess)
			r.Get("/{gameId}", s.handleSoloGet)
		})

		r.Route("/multiplayer/room", func(r chi.Router) {
			r.Post("/create", s.handleCreateRoom)
			r.Post("/join", s.handleJoinRoom)
			r.Get("/{roomId}", s.handleGetRoom)
			r.Post("/{roomId}/ready", s.handleReady)
			r.Post("/{roomId}/guess", s.handleRoomGuess)
			r.Post("/{roomId}/attack", s.handleAttack)
			r.Post("/{roomId}/leave", s.handleLeave)
			r.Get("/{roomId}/players/{playerId}", s.handleBoard)
		})

		r.Get("/stats/leaderboard", s.handleLeaderboard)
	})

	if d.Socket != nil {
		s.r.Handle("/ws", d.Socket)
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// ServeHTTP lets Server be mounted directly in an http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Str("requestId", chimw.GetReqID(r.Context())).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ helpers ------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes. Unknown errors are logged
// and hidden behind a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *game.Error
	if !errors.As(err, &de) {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInsufficientCoins):
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, map[string]string{"error": de.Msg})
}

// decode reads a JSON body into v. An empty body leaves v zeroed.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return game.Validation("Invalid JSON body")
	}
	return nil
}

// authorizeSeat requires a bearer ticket issued for (roomID, playerID).
func (s *Server) authorizeSeat(w http.ResponseWriter, r *http.Request, roomID, playerID string) bool {
	a := r.Header.Get("Authorization")
	if a == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Missing token"})
		return false
	}
	if !strings.HasPrefix(strings.ToLower(a), "bearer ") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return false
	}
	claims, err := s.tickets.Parse(strings.TrimSpace(a[7:]))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return false
	}
	if claims.RoomID != roomID || claims.PlayerID != playerID {
		s.log.Warn().Str("room", roomID).Str("player", playerID).Msg("ticket does not match seat")
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Ticket does not match this player"})
		return false
	}
	return true
}

// ------------------------------ SOLO ---------------------------------------

type startReq struct {
	Mode string `json:"mode"`
}

func (s *Server) handleSoloStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := solo.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.games.Start(r.Context(), mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type guessReq struct {
	PlayerID string `json:"playerId,omitempty"`
	Guess    string `json:"guess"`
}

func (s *Server) handleSoloGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.games.Guess(r.Context(), chi.URLParam(r, "gameId"), req.Guess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSoloGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.games.Get(r.Context(), chi.URLParam(r, "gameId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// --------------------------- MULTIPLAYER -----------------------------------

type joinReq struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type joinRes struct {
	room.JoinResult
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	s.seat(w, r, http.StatusCreated, s.rooms.CreateRoom)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	s.seat(w, r, http.StatusOK, s.rooms.JoinRoom)
}

// seat runs create or join and attaches a ticket for the new player.
func (s *Server) seat(w http.ResponseWriter, r *http.Request, status int,
	fn func(context.Context, string, string) (room.JoinResult, error)) {
	var req joinReq
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := fn(r.Context(), strings.TrimSpace(req.RoomID), req.PlayerName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, exp, err := s.tickets.Issue(res.RoomID, res.PlayerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, joinRes{JoinResult: res, Token: tok, ExpiresAt: exp})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	v, err := s.rooms.Room(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type readyReq struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	var req readyReq
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID := chi.URLParam(r, "roomId")
	if !s.authorizeSeat(w, r, roomID, req.PlayerID) {
		return
	}
	v, err := s.rooms.SetReady(r.Context(), roomID, req.PlayerID, req.IsReady)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRoomGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID := chi.URLParam(r, "roomId")
	if !s.authorizeSeat(w, r, roomID, req.PlayerID) {
		return
	}
	res, err := s.rooms.SubmitGuess(r.Context(), roomID, req.PlayerID, req.Guess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type attackReq struct {
	AttackerID string          `json:"attackerId"`
	TargetID   string          `json:"targetId"`
	AttackType game.AttackType `json:"attackType"`
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req attackReq
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID := chi.URLParam(r, "roomId")
	if !s.authorizeSeat(w, r, roomID, req.AttackerID) {
		return
	}
	res, err := s.rooms.SubmitAttack(r.Context(), roomID, req.AttackerID, req.TargetID, req.AttackType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type leaveReq struct {
	PlayerID string `json:"playerId"`
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveReq
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID := chi.URLParam(r, "roomId")
	if !s.authorizeSeat(w, r, roomID, req.PlayerID) {
		return
	}
	if err := s.rooms.LeaveRoom(r.Context(), roomID, req.PlayerID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	roomID, playerID := chi.URLParam(r, "roomId"), chi.URLParam(r, "playerId")
	if !s.authorizeSeat(w, r, roomID, playerID) {
		return
	}
	b, err := s.rooms.PlayerBoard(r.Context(), roomID, playerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ------------------------------ STATS --------------------------------------

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	switch mode {
	case "", history.ModeClassic, history.ModeCheat, history.ModeMultiplayer:
	default:
		s.writeError(w, r, game.Validation("Unknown game mode"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, game.Validation("limit must be a positive integer"))
			return
		}
		limit = min(n, maxLeaderboard)
	}
	rows, err := s.history.Leaderboard(r.Context(), mode, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "rows": rows})
}
