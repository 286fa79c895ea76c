package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeParse(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	tok, err := iss.Make(42, "alice")
	require.NoError(t, err)

	c, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), c.UserID)
	assert.Equal(t, "alice", c.Username)
	assert.NotEmpty(t, c.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), c.ExpiresAt, 5*time.Second)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	tok, err := NewIssuer("one", time.Hour).Make(1, "a")
	require.NoError(t, err)

	_, err = NewIssuer("two", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("s", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := iss.Make(1, "a")
	require.NoError(t, err)

	_, err = NewIssuer("s", time.Minute).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	_, err := NewIssuer("s", time.Minute).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
