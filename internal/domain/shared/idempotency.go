package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried mutation is not applied twice
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key so the request can be retried after a failure
	Forget(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
