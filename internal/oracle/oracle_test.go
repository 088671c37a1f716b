package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyin1122/wordle/internal/game"
)

type setDict map[string]bool

func (s setDict) Contains(w string) bool { return s[w] }

type stubOracle struct {
	ok    bool
	err   error
	calls int
}

func (s *stubOracle) IsRealWord(context.Context, string) (bool, error) {
	s.calls++
	return s.ok, s.err
}

func dictionaryServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/entries/") {
		case "crane":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[{"word":"crane"}]`))
		case "boom!":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientStatusMapping(t *testing.T) {
	srv := dictionaryServer(t)
	c := NewClient(srv.URL+"/entries", time.Second)
	ctx := context.Background()

	ok, err := c.IsRealWord(ctx, "CRANE")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsRealWord(ctx, "XXXXX")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.IsRealWord(ctx, "boom!")
	assert.Error(t, err)
}

func TestClientTransportError(t *testing.T) {
	srv := dictionaryServer(t)
	srv.Close()
	_, err := NewClient(srv.URL, 100*time.Millisecond).IsRealWord(context.Background(), "CRANE")
	assert.Error(t, err)
}

func TestValidator(t *testing.T) {
	dict := setDict{"CRANE": true}
	ctx := context.Background()

	t.Run("oracle accepts", func(t *testing.T) {
		v := NewValidator(&stubOracle{ok: true}, dict, zerolog.Nop())
		assert.NoError(t, v.Validate(ctx, "QOPHS"))
	})

	t.Run("oracle rejects, local accepts", func(t *testing.T) {
		v := NewValidator(&stubOracle{}, dict, zerolog.Nop())
		assert.NoError(t, v.Validate(ctx, "CRANE"))
	})

	t.Run("oracle down falls back", func(t *testing.T) {
		o := &stubOracle{err: errors.New("timeout")}
		v := NewValidator(o, dict, zerolog.Nop())
		assert.NoError(t, v.Validate(ctx, "CRANE"))
		err := v.Validate(ctx, "ZZZZZ")
		require.Error(t, err)
		assert.ErrorIs(t, err, game.ErrValidation)
		assert.Equal(t, "Not a valid word", err.Error())
		assert.Equal(t, 2, o.calls)
	})

	t.Run("no oracle", func(t *testing.T) {
		v := NewValidator(nil, dict, zerolog.Nop())
		assert.NoError(t, v.Validate(ctx, "CRANE"))
		assert.ErrorIs(t, v.Validate(ctx, "ZZZZZ"), game.ErrValidation)
	})
}
