package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.AchievementUnlock, error)

	// InsertUnlock conditionally inserts on the unique (account_id,
	// achievement_id) index. Returns false when the unlock already exists;
	// only the caller that sees true may grant the reward.
	InsertUnlock(ctx context.Context, accountID uuid.UUID, achievementID string, unlockedAt time.Time) (bool, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.AchievementUnlock, error) {
	var unlocks []model.AchievementUnlock
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("unlocked_at ASC").
		Find(&unlocks).Error
	return unlocks, err
}

func (r *achievementRepository) InsertUnlock(ctx context.Context, accountID uuid.UUID, achievementID string, unlockedAt time.Time) (bool, error) {
	unlock := model.AchievementUnlock{
		AccountID:     accountID,
		AchievementID: achievementID,
		UnlockedAt:    unlockedAt,
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&unlock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
