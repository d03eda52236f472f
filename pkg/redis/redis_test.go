package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_NilClientIsNoop(t *testing.T) {
	store := NewStore(nil)
	_, ok := store.(NoopStore)
	require.True(t, ok)

	ctx := context.Background()
	require.NoError(t, store.BlacklistToken(ctx, "tok", time.Minute))

	revoked, err := store.IsTokenBlacklisted(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))
	var out map[string]int
	found, err := store.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestBlacklistKey(t *testing.T) {
	assert.Equal(t, "blacklist:abc", blacklistKey("abc"))
}
