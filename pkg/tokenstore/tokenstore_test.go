package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRevokeUntilExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "abc", now.Add(time.Hour)))
	revoked, _ = s.IsRevoked(ctx, "abc")
	assert.True(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = s.IsRevoked(ctx, "abc")
	assert.False(t, revoked)
	assert.Empty(t, s.entries)
}

func TestRedisStoreKey(t *testing.T) {
	assert.Equal(t, "pms:revoked:xyz", NewRedisStore(nil, "").key("xyz"))
	assert.Equal(t, "prod:revoked:xyz", NewRedisStore(nil, "prod").key("xyz"))
}
