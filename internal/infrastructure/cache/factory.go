package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects to Redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewIdempotencyStore picks the store named in cfg. A redis store needs a
// client; without one it falls back to memory with a warning.
func NewIdempotencyStore(cfg config.IdempotencyConfig, client redis.UniversalClient, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Store {
	case "", config.IdempotencyStoreMemory:
		return NewInMemoryIdempotencyStore(), nil
	case config.IdempotencyStoreRedis:
		if client == nil {
			logger.Warn("Redis unavailable, idempotency keys are kept in memory and not shared between instances")
			return NewInMemoryIdempotencyStore(), nil
		}
		logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown idempotency store %q", cfg.Store)
	}
}
