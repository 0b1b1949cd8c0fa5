package cache

import (
	"context"
	"testing"
	"time"

	"github.com/farmledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "POST:/transfers:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.MarkProcessed(ctx, "POST:/transfers:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh, "replay within the ttl")

	seen, err := store.IsProcessed(ctx, "POST:/transfers:abc")
	require.NoError(t, err)
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, err = store.IsProcessed(ctx, "POST:/transfers:abc")
	require.NoError(t, err)
	assert.False(t, seen, "expired")

	fresh, err = store.MarkProcessed(ctx, "POST:/transfers:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	require.NoError(t, store.Forget(ctx, "POST:/transfers:abc"))
	assert.Zero(t, store.Size())
}

func TestInMemoryIdempotencyStore_RemoveExpired(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	now = now.Add(time.Minute)
	store.removeExpired()

	assert.Equal(t, 1, store.Size())
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestNewIdempotencyStore(t *testing.T) {
	logger := zap.NewNop()

	store, err := NewIdempotencyStore(config.IdempotencyConfig{Store: config.IdempotencyStoreMemory}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	_ = store.Close()

	store, err = NewIdempotencyStore(config.IdempotencyConfig{Store: config.IdempotencyStoreRedis}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &InMemoryIdempotencyStore{}, store, "falls back without a client")
	_ = store.Close()

	_, err = NewIdempotencyStore(config.IdempotencyConfig{Store: "memcached"}, nil, logger)
	assert.Error(t, err)
}
