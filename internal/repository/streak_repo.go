package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakRepository interface {
	Find(ctx context.Context, accountID uuid.UUID) (*model.StreakRecord, error)

	// Create inserts the first record for an account; returns false when a
	// concurrent writer already created it.
	Create(ctx context.Context, rec *model.StreakRecord) (bool, error)

	// Update writes the record only when total_actions still matches the
	// previously read value, so two concurrent actions by one account cannot
	// clobber each other's streak state.
	Update(ctx context.Context, rec *model.StreakRecord, prevTotalActions int) (bool, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Find(ctx context.Context, accountID uuid.UUID) (*model.StreakRecord, error) {
	var rec model.StreakRecord
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *streakRepository) Create(ctx context.Context, rec *model.StreakRecord) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *streakRepository) Update(ctx context.Context, rec *model.StreakRecord, prevTotalActions int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.StreakRecord{}).
		Where("account_id = ? AND total_actions = ?", rec.AccountID, prevTotalActions).
		Updates(map[string]interface{}{
			"current_streak":   rec.CurrentStreak,
			"longest_streak":   rec.LongestStreak,
			"last_action_date": rec.LastActionDate,
			"categories_seen":  rec.CategoriesSeen,
			"total_actions":    rec.TotalActions,
			"rare_count":       rec.RareCount,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
