package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/repository"
	"github.com/pixelspin/pixelspin/pkg/apperror"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// UnlimitedRemaining is the sentinel remaining value for paid tiers.
const UnlimitedRemaining = -1

// quotaWindow is the rolling reset window, anchored to the account's last
// reset rather than calendar midnight.
const quotaWindow = 24 * time.Hour

// casRetries bounds the optimistic-concurrency retry loop. Conflicts only
// happen when one account writes concurrently with itself, so contention is
// low and a handful of attempts is plenty.
const casRetries = 5

// QuotaSnapshot reports the outcome of a consume or a read.
type QuotaSnapshot struct {
	Permitted bool      `json:"permitted"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}

type QuotaTracker interface {
	// Consume spends one spin from the account's daily allowance. The write
	// is guarded by a compare-and-swap so two concurrent consumes cannot
	// under-count.
	Consume(ctx context.Context, accountID uuid.UUID, tier model.Tier) (QuotaSnapshot, error)

	// Grant lowers the consumed count by amount, floored at zero, without
	// moving the reset anchor. It is the only write path other components may
	// use to affect allowance.
	Grant(ctx context.Context, accountID uuid.UUID, amount int) error

	// Remaining reads the current snapshot without consuming.
	Remaining(ctx context.Context, accountID uuid.UUID, tier model.Tier) (QuotaSnapshot, error)
}

type quotaTracker struct {
	repo       repository.QuotaRepository
	dailyLimit int
	now        func() time.Time
	log        zerolog.Logger
}

func NewQuotaTracker(repo repository.QuotaRepository, dailyLimit int, log zerolog.Logger) QuotaTracker {
	return &quotaTracker{
		repo:       repo,
		dailyLimit: dailyLimit,
		now:        time.Now,
		log:        log.With().Str("component", "quota").Logger(),
	}
}

func (t *quotaTracker) Consume(ctx context.Context, accountID uuid.UUID, tier model.Tier) (QuotaSnapshot, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		now := t.now()

		rec, err := t.repo.Find(ctx, accountID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return QuotaSnapshot{}, fmt.Errorf("read quota: %w", err)
			}

			// First action for this account: create the record lazily.
			created, err := t.repo.Create(ctx, &model.QuotaRecord{
				AccountID: accountID,
				Count:     1,
				LastReset: now,
				Tier:      tier,
			})
			if err != nil {
				return QuotaSnapshot{}, fmt.Errorf("create quota: %w", err)
			}
			if !created {
				// Lost the insert race; re-read and go through the CAS path.
				continue
			}
			return t.snapshot(tier, 1, now), nil
		}

		shouldReset := now.Sub(rec.LastReset) > quotaWindow

		newCount := rec.Count + 1
		newReset := rec.LastReset
		if shouldReset {
			newCount = 1
			newReset = now
		}

		if !tier.Unlimited() && newCount > t.dailyLimit {
			return QuotaSnapshot{
				Permitted: false,
				Remaining: 0,
				ResetsAt:  rec.LastReset.Add(quotaWindow),
			}, nil
		}

		swapped, err := t.repo.CompareAndSwap(ctx, accountID, rec.Count, rec.LastReset, newCount, newReset, tier)
		if err != nil {
			return QuotaSnapshot{}, fmt.Errorf("update quota: %w", err)
		}
		if !swapped {
			t.log.Debug().Str("account_id", accountID.String()).Int("attempt", attempt+1).Msg("quota write conflict, retrying")
			continue
		}

		return t.snapshot(tier, newCount, newReset), nil
	}

	return QuotaSnapshot{}, fmt.Errorf("consume for %s: %w", accountID, apperror.ErrConflict)
}

func (t *quotaTracker) Grant(ctx context.Context, accountID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		rec, err := t.repo.Find(ctx, accountID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("read quota: %w", err)
			}

			// Granting to an account that never consumed: a zero-count record
			// already has full allowance, so just materialize it.
			created, err := t.repo.Create(ctx, &model.QuotaRecord{
				AccountID: accountID,
				Count:     0,
				LastReset: t.now(),
				Tier:      model.TierFree,
			})
			if err != nil {
				return fmt.Errorf("create quota: %w", err)
			}
			if !created {
				continue
			}
			return nil
		}

		newCount := rec.Count - amount
		if newCount < 0 {
			newCount = 0
		}

		// LastReset is deliberately untouched; a grant extends allowance, not
		// the window.
		swapped, err := t.repo.CompareAndSwap(ctx, accountID, rec.Count, rec.LastReset, newCount, rec.LastReset, rec.Tier)
		if err != nil {
			return fmt.Errorf("update quota: %w", err)
		}
		if swapped {
			return nil
		}
	}

	return fmt.Errorf("grant for %s: %w", accountID, apperror.ErrConflict)
}

func (t *quotaTracker) Remaining(ctx context.Context, accountID uuid.UUID, tier model.Tier) (QuotaSnapshot, error) {
	rec, err := t.repo.Find(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t.snapshot(tier, 0, t.now()), nil
		}
		return QuotaSnapshot{}, fmt.Errorf("read quota: %w", err)
	}

	count := rec.Count
	lastReset := rec.LastReset
	if t.now().Sub(rec.LastReset) > quotaWindow {
		// A reset is due but not yet persisted; report what the next consume
		// will observe.
		count = 0
		lastReset = t.now()
	}

	return t.snapshot(tier, count, lastReset), nil
}

func (t *quotaTracker) snapshot(tier model.Tier, count int, lastReset time.Time) QuotaSnapshot {
	if tier.Unlimited() {
		return QuotaSnapshot{
			Permitted: true,
			Remaining: UnlimitedRemaining,
			ResetsAt:  lastReset.Add(quotaWindow),
		}
	}

	remaining := t.dailyLimit - count
	if remaining < 0 {
		remaining = 0
	}

	return QuotaSnapshot{
		Permitted: true,
		Remaining: remaining,
		ResetsAt:  lastReset.Add(quotaWindow),
	}
}
