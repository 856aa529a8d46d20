package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStreakEngine(repo *fakeStreakRepo, now func() time.Time) *streakEngine {
	e := NewStreakEngine(repo).(*streakEngine)
	e.now = now
	return e
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 15, 30, 0, 0, time.UTC)
}

func TestRecordAction_FirstAction(t *testing.T) {
	now := day(1)
	engine := newTestStreakEngine(newFakeStreakRepo(), func() time.Time { return now })
	accountID := uuid.New()

	result, err := engine.RecordAction(context.Background(), accountID, "anime", "soft watercolor")
	require.NoError(t, err)

	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.LongestStreak)
	assert.Equal(t, 1, result.TotalActions)
	assert.Equal(t, []string{"anime"}, result.CategoriesSeen)
	assert.False(t, result.IsRare)
}

func TestRecordAction_ConsecutiveDaysExtendStreak(t *testing.T) {
	now := day(1)
	engine := newTestStreakEngine(newFakeStreakRepo(), func() time.Time { return now })
	accountID := uuid.New()

	for d := 1; d <= 4; d++ {
		now = day(d)
		result, err := engine.RecordAction(context.Background(), accountID, "anime", "soft watercolor")
		require.NoError(t, err)
		assert.Equal(t, d, result.CurrentStreak)
	}
}

func TestRecordAction_SkippedDayResetsStreak(t *testing.T) {
	now := day(1)
	engine := newTestStreakEngine(newFakeStreakRepo(), func() time.Time { return now })
	accountID := uuid.New()

	result, err := engine.RecordAction(context.Background(), accountID, "anime", "soft watercolor")
	require.NoError(t, err)
	require.Equal(t, 1, result.CurrentStreak)

	// Day 2 skipped entirely.
	now = day(3)

	result, err = engine.RecordAction(context.Background(), accountID, "anime", "soft watercolor")
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak, "a gap breaks the streak")
	assert.Equal(t, 1, result.LongestStreak)
	assert.Equal(t, 2, result.TotalActions)
}

// Known oddity, preserved on purpose: a repeat action on the same calendar
// day also increments the streak, so the counter tracks actions rather than
// distinct days. Do not "fix" without a product decision.
func TestRecordAction_SameDayRepeatStillIncrements(t *testing.T) {
	now := day(1)
	engine := newTestStreakEngine(newFakeStreakRepo(), func() time.Time { return now })
	accountID := uuid.New()

	for i := 1; i <= 3; i++ {
		result, err := engine.RecordAction(context.Background(), accountID, "anime", "soft watercolor")
		require.NoError(t, err)
		assert.Equal(t, i, result.CurrentStreak)
	}
}

func TestRecordAction_LongestStreakNeverDecreases(t *testing.T) {
	now := day(1)
	engine := newTestStreakEngine(newFakeStreakRepo(), func() time.Time { return now })
	accountID := uuid.New()

	longest := 0
	for _, d := range []int{1, 2, 3, 7, 8, 20} {
		now = day(d)
		result, err := engine.RecordAction(context.Background(), accountID, "anime", "soft watercolor")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.LongestStreak, longest)
		assert.GreaterOrEqual(t, result.LongestStreak, result.CurrentStreak)
		longest = result.LongestStreak
	}
	assert.Equal(t, 3, longest)
}

func TestRecordAction_RarityIsDeterministic(t *testing.T) {
	now := day(1)
	engine := newTestStreakEngine(newFakeStreakRepo(), func() time.Time { return now })
	accountID := uuid.New()

	result, err := engine.RecordAction(context.Background(), accountID, "fantasy", "holographic vaporwave")
	require.NoError(t, err)
	assert.True(t, result.IsRare)
	assert.Equal(t, 1, result.RareCount)

	result, err = engine.RecordAction(context.Background(), accountID, "fantasy", "plain sketch")
	require.NoError(t, err)
	assert.False(t, result.IsRare)
	assert.Equal(t, 1, result.RareCount)

	// Same descriptor classifies the same way every time.
	result, err = engine.RecordAction(context.Background(), accountID, "fantasy", "holographic vaporwave")
	require.NoError(t, err)
	assert.True(t, result.IsRare)
	assert.Equal(t, 2, result.RareCount)
}

func TestRecordAction_CategoriesDeduplicatedAndSorted(t *testing.T) {
	now := day(1)
	engine := newTestStreakEngine(newFakeStreakRepo(), func() time.Time { return now })
	accountID := uuid.New()

	for _, category := range []string{"noir", "anime", "noir", "cyberpunk"} {
		_, err := engine.RecordAction(context.Background(), accountID, category, "plain sketch")
		require.NoError(t, err)
	}

	rec, err := engine.Get(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, []string{"anime", "cyberpunk", "noir"}, rec.Categories())
}

func TestClassifyStreak(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hasPrior bool
		last     time.Time
		want     streakState
	}{
		{"no prior action", false, time.Time{}, streakNoPrior},
		{"same day", true, today, streakSameDay},
		{"yesterday", true, today.AddDate(0, 0, -1), streakConsecutiveDay},
		{"two days ago", true, today.AddDate(0, 0, -2), streakBroken},
		{"last week", true, today.AddDate(0, 0, -7), streakBroken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStreak(tt.hasPrior, tt.last, today))
		})
	}
}
