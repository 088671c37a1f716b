// Package config reads process configuration from the environment.
// main loads .env with godotenv before calling Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/lvyin1122/wordle/internal/game"
	"github.com/lvyin1122/wordle/internal/history"
	"github.com/lvyin1122/wordle/internal/oracle"
)

// Config is the full server configuration.
type Config struct {
	Port         string
	LogLevel     string
	LogFormat    string
	ClientOrigin string

	MaxRounds    int
	RoomTTL      time.Duration
	ReapInterval time.Duration

	AnswersFile string
	AllowedFile string

	DictionaryAPIURL     string
	DictionaryAPITimeout time.Duration
	DictionaryAPIEnabled bool

	HistoryDSN string

	TicketSecret string
	TicketTTL    time.Duration

	RateLimit  int
	RateWindow time.Duration

	RNGSeed uint64
}

// Load reads every variable, applying defaults. Malformed values are errors.
func Load() (Config, error) {
	c := Config{
		Port:             getEnv("PORT", "5175"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		ClientOrigin:     getEnv("CLIENT_ORIGIN", "http://localhost:3000"),
		AnswersFile:      os.Getenv("WORDS_ANSWERS_FILE"),
		AllowedFile:      os.Getenv("WORDS_ALLOWED_FILE"),
		DictionaryAPIURL: getEnv("DICTIONARY_API_URL", oracle.DefaultBaseURL),
		HistoryDSN:       getEnv("HISTORY_DSN", history.DefaultDSN),
		TicketSecret:     getEnv("TICKET_SECRET", "dev-ticket-secret-change-me"),
	}

	var err error
	if c.MaxRounds, err = getInt("MAX_ROUNDS", game.DefaultMaxRounds); err != nil {
		return c, err
	}
	if c.RoomTTL, err = getDuration("ROOM_TTL", time.Hour); err != nil {
		return c, err
	}
	if c.ReapInterval, err = getDuration("REAP_INTERVAL", time.Hour); err != nil {
		return c, err
	}
	if c.DictionaryAPITimeout, err = getDuration("DICTIONARY_API_TIMEOUT", 3*time.Second); err != nil {
		return c, err
	}
	if c.DictionaryAPIEnabled, err = getBool("DICTIONARY_API_ENABLED", true); err != nil {
		return c, err
	}
	if c.TicketTTL, err = getDuration("TICKET_TTL", 24*time.Hour); err != nil {
		return c, err
	}
	if c.RateLimit, err = getInt("RATE_LIMIT", 100); err != nil {
		return c, err
	}
	if c.RateWindow, err = getDuration("RATE_WINDOW", 15*time.Minute); err != nil {
		return c, err
	}
	seed, err := getInt("RNG_SEED", 0)
	if err != nil {
		return c, err
	}
	if seed == 0 {
		seed = int(time.Now().UnixNano())
	}
	c.RNGSeed = uint64(seed)

	if c.MaxRounds <= 0 {
		return c, fmt.Errorf("MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	}
	if c.ReapInterval <= 0 {
		return c, fmt.Errorf("REAP_INTERVAL must be positive, got %s", c.ReapInterval)
	}
	return c, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
