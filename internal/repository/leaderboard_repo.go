package repository

import (
	"context"

	"github.com/pixelspin/pixelspin/internal/model"
	"gorm.io/gorm"
)

// LeaderboardRepository serves the read-only ranking views. Every query
// carries a secondary ascending time ordering so ties resolve the same way on
// every call.
type LeaderboardRepository interface {
	TopByVotes(ctx context.Context, limit int) ([]model.SpinRecord, error)
	TopByStreak(ctx context.Context, limit int) ([]model.StreakRecord, error)
	TopBySpins(ctx context.Context, limit int) ([]model.StreakRecord, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) TopByVotes(ctx context.Context, limit int) ([]model.SpinRecord, error) {
	var spins []model.SpinRecord
	err := r.db.WithContext(ctx).
		Order("vote_count DESC, created_at ASC").
		Limit(limit).
		Find(&spins).Error
	return spins, err
}

func (r *leaderboardRepository) TopByStreak(ctx context.Context, limit int) ([]model.StreakRecord, error) {
	var streaks []model.StreakRecord
	err := r.db.WithContext(ctx).
		Order("current_streak DESC, last_action_date ASC").
		Limit(limit).
		Find(&streaks).Error
	return streaks, err
}

func (r *leaderboardRepository) TopBySpins(ctx context.Context, limit int) ([]model.StreakRecord, error) {
	var streaks []model.StreakRecord
	err := r.db.WithContext(ctx).
		Order("total_actions DESC, last_action_date ASC").
		Limit(limit).
		Find(&streaks).Error
	return streaks, err
}
