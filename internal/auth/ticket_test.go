package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, exp, err := iss.Issue("1234", "p1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "1234", c.RoomID)
	assert.Equal(t, "p1", c.PlayerID)
}

func TestParseRejectsForgedAndExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, _, err := iss.Issue("1234", "p1")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidTicket)

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RoomID: "1234", PlayerID: "p1"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewIssuer("secret", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestParseRequiresSeat(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RoomID: "1234"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewIssuer("secret", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}
