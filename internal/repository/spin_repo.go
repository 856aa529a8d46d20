package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SpinTotals aggregates the share/vote counters over an account's spins, used
// as achievement progress input.
type SpinTotals struct {
	ShareCount int
	VoteCount  int
}

type SpinRepository interface {
	Create(ctx context.Context, spin *model.SpinRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SpinRecord, error)
	Recent(ctx context.Context, limit int) ([]model.SpinRecord, error)

	// UpsertVote records a vote, overwriting Kind on a repeat vote by the same
	// account. Returns true only for a first-time vote on the spin.
	UpsertVote(ctx context.Context, vote *model.VoteRecord) (bool, error)

	IncrementShareCount(ctx context.Context, spinID uuid.UUID) error
	IncrementVoteCount(ctx context.Context, spinID uuid.UUID) error

	TotalsByAccount(ctx context.Context, accountID uuid.UUID) (SpinTotals, error)
}

type spinRepository struct {
	db *gorm.DB
}

func NewSpinRepository(db *gorm.DB) SpinRepository {
	return &spinRepository{db: db}
}

func (r *spinRepository) Create(ctx context.Context, spin *model.SpinRecord) error {
	return r.db.WithContext(ctx).Create(spin).Error
}

func (r *spinRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SpinRecord, error) {
	var spin model.SpinRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&spin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &spin, nil
}

func (r *spinRepository) Recent(ctx context.Context, limit int) ([]model.SpinRecord, error) {
	var spins []model.SpinRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&spins).Error
	return spins, err
}

func (r *spinRepository) UpsertVote(ctx context.Context, vote *model.VoteRecord) (bool, error) {
	// Try the conditional insert first; the unique (spin_id, account_id) index
	// makes it the serialization point. A lost insert means the account voted
	// before, so only the kind is overwritten.
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "spin_id"}, {Name: "account_id"}},
		DoNothing: true,
	}).Create(vote)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	err := r.db.WithContext(ctx).Model(&model.VoteRecord{}).
		Where("spin_id = ? AND account_id = ?", vote.SpinID, vote.AccountID).
		Update("kind", vote.Kind).Error
	return false, err
}

func (r *spinRepository) IncrementShareCount(ctx context.Context, spinID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.SpinRecord{}).
		Where("id = ?", spinID).
		Update("share_count", gorm.Expr("share_count + 1")).Error
}

func (r *spinRepository) IncrementVoteCount(ctx context.Context, spinID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.SpinRecord{}).
		Where("id = ?", spinID).
		Update("vote_count", gorm.Expr("vote_count + 1")).Error
}

func (r *spinRepository) TotalsByAccount(ctx context.Context, accountID uuid.UUID) (SpinTotals, error) {
	var totals SpinTotals
	err := r.db.WithContext(ctx).Model(&model.SpinRecord{}).
		Select("COALESCE(SUM(share_count), 0) as share_count, COALESCE(SUM(vote_count), 0) as vote_count").
		Where("account_id = ?", accountID).
		Scan(&totals).Error
	return totals, err
}
