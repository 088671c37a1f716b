// internal/oracle/oracle.go
//
// Word-validity oracle.
//
// Client asks the Free Dictionary API whether a word exists:
//   - 200 → real word
//   - 404 → not a word
//   - anything else, or a transport error → error (degraded)
//
// Validator combines the oracle with the local dictionary. The oracle is asked
// first; a negative or failed answer falls back to local membership, so an
// unreachable service never blocks a guess. Only a word rejected by both is
// reported to the player.
package oracle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lvyin1122/wordle/internal/game"
)

// DefaultBaseURL is the public Free Dictionary API endpoint.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en/"

// Oracle reports whether a word is real.
type Oracle interface {
	IsRealWord(ctx context.Context, word string) (bool, error)
}

// Dictionary is the local fallback.
type Dictionary interface {
	Contains(word string) bool
}

// Client is an HTTP-backed Oracle.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL (word is appended) with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IsRealWord queries the dictionary service for word.
func (c *Client) IsRealWord(ctx context.Context, word string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.PathEscape(strings.ToLower(word)), nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("dictionary request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("dictionary status %d", resp.StatusCode)
}

// Validator accepts a guess if either the oracle or the local dictionary knows it.
type Validator struct {
	oracle Oracle
	dict   Dictionary
	log    zerolog.Logger
}

// NewValidator combines o (may be nil to disable the network) with d.
func NewValidator(o Oracle, d Dictionary, log zerolog.Logger) *Validator {
	return &Validator{
		oracle: o,
		dict:   d,
		log:    log.With().Str("component", "oracle").Logger(),
	}
}

// Validate returns nil for an acceptable word and a validation error otherwise.
// word must already be normalized.
func (v *Validator) Validate(ctx context.Context, word string) error {
	if v.oracle != nil {
		ok, err := v.oracle.IsRealWord(ctx, word)
		switch {
		case err != nil:
			v.log.Warn().Err(err).Str("word", word).Msg("dictionary service unavailable, using local list")
		case ok:
			return nil
		default:
			v.log.Debug().Str("word", word).Msg("dictionary service rejected word, checking local list")
		}
	}
	if v.dict.Contains(word) {
		return nil
	}
	return game.Validation("Not a valid word")
}
