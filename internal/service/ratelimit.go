package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pixelspin/pixelspin/pkg/counterstore"
	"github.com/rs/zerolog"
)

// RateLimitResult is what one Check observed: whether the request may proceed,
// how much of the window is left, and when the window resets.
type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RateLimiter throttles callers by a stable string identifier over a fixed
// window. Throttling is best-effort: a broken counter store must never take
// the product down, so store errors fail open.
type RateLimiter interface {
	Check(ctx context.Context, identifier string) RateLimitResult
}

type fixedWindowLimiter struct {
	store  counterstore.Store
	limit  int
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

func NewRateLimiter(store counterstore.Store, limit int, window time.Duration, log zerolog.Logger) RateLimiter {
	return &fixedWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
		log:    log.With().Str("component", "ratelimit").Logger(),
	}
}

func (l *fixedWindowLimiter) Check(ctx context.Context, identifier string) RateLimitResult {
	if l.store == nil {
		return l.failOpen()
	}

	key := fmt.Sprintf("ratelimit:%s", identifier)
	now := l.now()

	count, exists, err := l.store.Get(ctx, key)
	if err != nil {
		l.log.Warn().Err(err).Str("identifier", identifier).Msg("counter store unreachable, failing open")
		return l.failOpen()
	}

	// Already over the ceiling: reject without incrementing so the stored
	// count stays bounded and every rejection in the window reports the same
	// reset time.
	if exists && count >= int64(l.limit) {
		return RateLimitResult{
			Allowed:   false,
			Limit:     l.limit,
			Remaining: 0,
			ResetAt:   l.resetAt(ctx, key, now),
		}
	}

	newCount, err := l.store.IncrementWithExpiry(ctx, key, l.window)
	if err != nil {
		l.log.Warn().Err(err).Str("identifier", identifier).Msg("counter store unreachable, failing open")
		return l.failOpen()
	}

	if newCount > int64(l.limit) {
		return RateLimitResult{
			Allowed:   false,
			Limit:     l.limit,
			Remaining: 0,
			ResetAt:   l.resetAt(ctx, key, now),
		}
	}

	remaining := l.limit - int(newCount)
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   l.resetAt(ctx, key, now),
	}
}

// resetAt derives the window end from the key's remaining TTL, falling back
// to a full window when the store cannot answer.
func (l *fixedWindowLimiter) resetAt(ctx context.Context, key string, now time.Time) time.Time {
	ttl, err := l.store.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		return now.Add(l.window)
	}
	return now.Add(ttl)
}

func (l *fixedWindowLimiter) failOpen() RateLimitResult {
	return RateLimitResult{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit,
		ResetAt:   l.now().Add(l.window),
	}
}
