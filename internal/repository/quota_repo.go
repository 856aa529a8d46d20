package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotaRepository interface {
	Find(ctx context.Context, accountID uuid.UUID) (*model.QuotaRecord, error)

	// Create inserts the record only when no row exists yet for the account.
	// Returns false when another writer got there first.
	Create(ctx context.Context, rec *model.QuotaRecord) (bool, error)

	// CompareAndSwap updates the record only when count and last_reset still
	// hold the previously read values. Returns false when the guard failed and
	// the caller should re-read and retry.
	CompareAndSwap(ctx context.Context, accountID uuid.UUID, prevCount int, prevLastReset time.Time, newCount int, newLastReset time.Time, tier model.Tier) (bool, error)
}

type quotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

func (r *quotaRepository) Find(ctx context.Context, accountID uuid.UUID) (*model.QuotaRecord, error) {
	var rec model.QuotaRecord
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *quotaRepository) Create(ctx context.Context, rec *model.QuotaRecord) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *quotaRepository) CompareAndSwap(ctx context.Context, accountID uuid.UUID, prevCount int, prevLastReset time.Time, newCount int, newLastReset time.Time, tier model.Tier) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.QuotaRecord{}).
		Where("account_id = ? AND count = ? AND last_reset = ?", accountID, prevCount, prevLastReset).
		Updates(map[string]interface{}{
			"count":      newCount,
			"last_reset": newLastReset,
			"tier":       tier,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
