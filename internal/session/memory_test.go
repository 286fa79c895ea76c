package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	d := NewMemory().(*memDenylist)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	require.NoError(t, d.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "old", now.Add(-time.Minute)))

	ok, err := d.Revoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = d.Revoked(ctx, "old")
	assert.False(t, ok, "already expired tokens are not stored")

	now = now.Add(2 * time.Minute)
	ok, _ = d.Revoked(ctx, "a")
	assert.False(t, ok)
}
