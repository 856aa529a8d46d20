package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(repo *fakeQuotaRepo, limit int, now func() time.Time) *quotaTracker {
	tr := NewQuotaTracker(repo, limit, zerolog.Nop()).(*quotaTracker)
	tr.now = now
	return tr
}

func TestConsume_FreeTierDailyLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(newFakeQuotaRepo(), 20, func() time.Time { return now })
	accountID := uuid.New()

	for i := 1; i <= 20; i++ {
		snap, err := tracker.Consume(context.Background(), accountID, model.TierFree)
		require.NoError(t, err)
		require.True(t, snap.Permitted, "consume %d should be permitted", i)
		assert.Equal(t, 20-i, snap.Remaining)
	}

	snap, err := tracker.Consume(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)
	assert.False(t, snap.Permitted)
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, now.Add(24*time.Hour), snap.ResetsAt)
}

func TestConsume_RollingWindowReset(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeQuotaRepo()
	tracker := newTestTracker(repo, 20, func() time.Time { return now })
	accountID := uuid.New()

	for i := 0; i < 20; i++ {
		_, err := tracker.Consume(context.Background(), accountID, model.TierFree)
		require.NoError(t, err)
	}
	snap, err := tracker.Consume(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)
	require.False(t, snap.Permitted)

	// More than 24h after the anchor the count resets regardless of its
	// prior value, and this consume becomes the first of the new window.
	now = now.Add(24*time.Hour + time.Minute)

	snap, err = tracker.Consume(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)
	assert.True(t, snap.Permitted)
	assert.Equal(t, 19, snap.Remaining)

	rec, err := repo.Find(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, now, rec.LastReset)
}

func TestConsume_NoResetWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeQuotaRepo()
	tracker := newTestTracker(repo, 20, func() time.Time { return now })
	accountID := uuid.New()

	_, err := tracker.Consume(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)
	anchor := now

	now = now.Add(23 * time.Hour)

	snap, err := tracker.Consume(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 18, snap.Remaining)

	rec, err := repo.Find(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, anchor, rec.LastReset, "the anchor only moves on reset")
}

func TestConsume_PaidTierNeverLimited(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(newFakeQuotaRepo(), 20, func() time.Time { return now })
	accountID := uuid.New()

	for i := 0; i < 50; i++ {
		snap, err := tracker.Consume(context.Background(), accountID, model.TierPro)
		require.NoError(t, err)
		require.True(t, snap.Permitted)
		assert.Equal(t, UnlimitedRemaining, snap.Remaining)
	}
}

func TestGrant_RaisesRemainingWithoutMovingAnchor(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeQuotaRepo()
	tracker := newTestTracker(repo, 20, func() time.Time { return now })
	accountID := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := tracker.Consume(context.Background(), accountID, model.TierFree)
		require.NoError(t, err)
	}
	before, err := repo.Find(context.Background(), accountID)
	require.NoError(t, err)

	require.NoError(t, tracker.Grant(context.Background(), accountID, 3))

	after, err := repo.Find(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Count)
	assert.Equal(t, before.LastReset, after.LastReset)

	snap, err := tracker.Remaining(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 18, snap.Remaining)
}

func TestGrant_FloorsAtZero(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeQuotaRepo()
	tracker := newTestTracker(repo, 20, func() time.Time { return now })
	accountID := uuid.New()

	_, err := tracker.Consume(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)

	require.NoError(t, tracker.Grant(context.Background(), accountID, 10))

	rec, err := repo.Find(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Count, "count never goes negative")
}

func TestGrant_CreatesRecordForUnseenAccount(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeQuotaRepo()
	tracker := newTestTracker(repo, 20, func() time.Time { return now })
	accountID := uuid.New()

	require.NoError(t, tracker.Grant(context.Background(), accountID, 5))

	rec, err := repo.Find(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Count)
}

// Two consumes racing against count=19 with limit 20: the compare-and-swap
// guarantees one lands as the 20th and the other is rejected as the 21st,
// whatever the interleaving.
func TestConsume_ConcurrentAtBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeQuotaRepo()
	tracker := newTestTracker(repo, 20, func() time.Time { return now })
	accountID := uuid.New()

	for i := 0; i < 19; i++ {
		_, err := tracker.Consume(context.Background(), accountID, model.TierFree)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]QuotaSnapshot, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := tracker.Consume(context.Background(), accountID, model.TierFree)
			require.NoError(t, err)
			results[i] = snap
		}(i)
	}
	wg.Wait()

	permitted := 0
	for _, snap := range results {
		if snap.Permitted {
			permitted++
		}
	}
	assert.Equal(t, 1, permitted, "exactly one racer gets the 20th spin")

	rec, err := repo.Find(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 20, rec.Count, "no lost update")
}

func TestRemaining_ReportsPendingReset(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeQuotaRepo()
	tracker := newTestTracker(repo, 20, func() time.Time { return now })
	accountID := uuid.New()

	for i := 0; i < 20; i++ {
		_, err := tracker.Consume(context.Background(), accountID, model.TierFree)
		require.NoError(t, err)
	}

	now = now.Add(25 * time.Hour)

	snap, err := tracker.Remaining(context.Background(), accountID, model.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Remaining, "a due reset counts as a fresh window")
}
