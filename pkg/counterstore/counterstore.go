package counterstore

import (
	"context"
	"time"
)

// Store is an atomic counter with expiry, keyed by string. The rate limiter
// is its only consumer; implementations must make IncrementWithExpiry a single
// atomic operation so concurrent callers sharing one key never observe a
// read-then-write race.
type Store interface {
	// IncrementWithExpiry increments key by one and, only when the increment
	// created the key, applies the expiry. Returns the post-increment value.
	IncrementWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)

	// Get returns the current value and whether the key exists.
	Get(ctx context.Context, key string) (int64, bool, error)

	// TTL returns the remaining lifetime of key, or zero when the key has no
	// expiry or does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
