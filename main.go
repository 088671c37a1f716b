package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lvyin1122/wordle/internal/auth"
	"github.com/lvyin1122/wordle/internal/config"
	"github.com/lvyin1122/wordle/internal/game"
	"github.com/lvyin1122/wordle/internal/history"
	"github.com/lvyin1122/wordle/internal/httpserver"
	"github.com/lvyin1122/wordle/internal/oracle"
	"github.com/lvyin1122/wordle/internal/room"
	"github.com/lvyin1122/wordle/internal/solo"
	"github.com/lvyin1122/wordle/internal/store"
	"github.com/lvyin1122/wordle/internal/words"
	"github.com/lvyin1122/wordle/internal/ws"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	logger := log.Logger

	dict, err := words.Load(cfg.AnswersFile, cfg.AllowedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	answers, allowed := dict.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	var api oracle.Oracle
	if cfg.DictionaryAPIEnabled {
		api = oracle.NewClient(cfg.DictionaryAPIURL, cfg.DictionaryAPITimeout)
	}
	validator := oracle.NewValidator(api, dict, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hist, err := history.Open(ctx, cfg.HistoryDSN, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open history store")
	}

	rng := game.NewRand(cfg.RNGSeed)
	rooms := room.NewManager(room.Config{
		Dict:      dict,
		Validator: validator,
		Recorder:  hist,
		Rand:      rng,
		MaxRounds: cfg.MaxRounds,
		TTL:       cfg.RoomTTL,
		Logger:    logger,
	})
	games := solo.NewService(solo.Config{
		Dict:      dict,
		Validator: validator,
		Recorder:  hist,
		Rand:      rng,
		MaxRounds: cfg.MaxRounds,
		TTL:       cfg.RoomTTL,
		Logger:    logger,
	})

	hub := ws.NewHub(logger)
	rooms.SetNotifier(hub)
	tickets := auth.NewIssuer(cfg.TicketSecret, cfg.TicketTTL)
	socket := ws.NewHandler(hub, rooms, tickets, func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || o == cfg.ClientOrigin
	}, logger)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpserver.New(httpserver.Deps{
			Rooms:        rooms,
			Games:        games,
			History:      hist,
			Tickets:      tickets,
			Words:        dict,
			Socket:       socket,
			ClientOrigin: cfg.ClientOrigin,
			RateLimit:    cfg.RateLimit,
			RateWindow:   cfg.RateWindow,
			Logger:       logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go store.Every(ctx, cfg.ReapInterval, func(now time.Time) {
		rooms.Reap(ctx, now)
		games.Reap(ctx, now)
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting wordle server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	hub.Close()
	if err := hist.Close(); err != nil {
		log.Warn().Err(err).Msg("close history store")
	}
	log.Info().Msg("server exited")
}
