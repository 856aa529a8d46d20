package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/dto"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/repository"
	"github.com/pixelspin/pixelspin/pkg/apperror"
	"github.com/rs/zerolog"
)

// SpinService runs the gamified pipeline around one transformation request:
// quota consume, durable spin record, streak update, achievement evaluation,
// notifications. A store failure before the spin record exists aborts the
// whole action with no side effects.
type SpinService interface {
	Spin(ctx context.Context, accountID uuid.UUID, tier model.Tier, req dto.SpinRequest) (*dto.SpinResponse, error)
	Vote(ctx context.Context, voterID uuid.UUID, spinID uuid.UUID, kind model.VoteKind) error
	Share(ctx context.Context, accountID uuid.UUID, spinID uuid.UUID) error
	Recent(ctx context.Context, limit int) ([]model.SpinRecord, error)
}

type spinService struct {
	spins         repository.SpinRepository
	quota         QuotaTracker
	streaks       StreakEngine
	achievements  AchievementEngine
	notifications NotificationService
	log           zerolog.Logger
}

func NewSpinService(
	spins repository.SpinRepository,
	quota QuotaTracker,
	streaks StreakEngine,
	achievements AchievementEngine,
	notifications NotificationService,
	log zerolog.Logger,
) SpinService {
	return &spinService{
		spins:         spins,
		quota:         quota,
		streaks:       streaks,
		achievements:  achievements,
		notifications: notifications,
		log:           log.With().Str("component", "spin").Logger(),
	}
}

func (s *spinService) Spin(ctx context.Context, accountID uuid.UUID, tier model.Tier, req dto.SpinRequest) (*dto.SpinResponse, error) {
	snapshot, err := s.quota.Consume(ctx, accountID, tier)
	if err != nil {
		return nil, fmt.Errorf("consume quota: %w", err)
	}
	if !snapshot.Permitted {
		return nil, &apperror.QuotaExceededError{ResetsAt: snapshot.ResetsAt}
	}

	spin := &model.SpinRecord{
		ID:         uuid.New(),
		AccountID:  accountID,
		Category:   req.Category,
		Descriptor: req.Descriptor,
		IsRare:     IsRareDescriptor(req.Descriptor),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.spins.Create(ctx, spin); err != nil {
		return nil, fmt.Errorf("record spin: %w", err)
	}

	result, err := s.streaks.RecordAction(ctx, accountID, req.Category, req.Descriptor)
	if err != nil {
		return nil, fmt.Errorf("update streak: %w", err)
	}

	unlocked, err := s.evaluateAchievements(ctx, accountID, result)
	if err != nil {
		return nil, err
	}

	if spin.IsRare && s.notifications != nil {
		s.notifications.Notify(ctx, &model.Notification{
			AccountID: accountID,
			Type:      model.NotificationRareSpin,
			Message:   fmt.Sprintf("Rare style landed: %s", req.Descriptor),
		})
	}

	return &dto.SpinResponse{
		SpinID:     spin.ID,
		Category:   spin.Category,
		Descriptor: spin.Descriptor,
		IsRare:     spin.IsRare,
		Streak: dto.StreakSummary{
			Current:        result.CurrentStreak,
			Longest:        result.LongestStreak,
			CategoriesSeen: result.CategoriesSeen,
			TotalSpins:     result.TotalActions,
			RareCount:      result.RareCount,
		},
		Quota: dto.QuotaSummary{
			Remaining: snapshot.Remaining,
			ResetsAt:  snapshot.ResetsAt,
		},
		Unlocked:  unlockedDTOs(unlocked),
		CreatedAt: spin.CreatedAt,
	}, nil
}

func (s *spinService) Vote(ctx context.Context, voterID uuid.UUID, spinID uuid.UUID, kind model.VoteKind) error {
	spin, err := s.spins.FindByID(ctx, spinID)
	if err != nil {
		return fmt.Errorf("%w: spin %s", apperror.ErrNotFound, spinID)
	}

	created, err := s.spins.UpsertVote(ctx, &model.VoteRecord{
		SpinID:    spinID,
		AccountID: voterID,
		Kind:      kind,
	})
	if err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	if !created {
		// Repeat vote: kind was overwritten, the counter stays put.
		return nil
	}

	if err := s.spins.IncrementVoteCount(ctx, spinID); err != nil {
		return fmt.Errorf("bump vote count: %w", err)
	}

	// Votes on your own spins count, but earn you nothing.
	if spin.AccountID == voterID {
		return nil
	}
	return s.refreshOwnerAchievements(ctx, spin.AccountID)
}

func (s *spinService) Share(ctx context.Context, accountID uuid.UUID, spinID uuid.UUID) error {
	spin, err := s.spins.FindByID(ctx, spinID)
	if err != nil {
		return fmt.Errorf("%w: spin %s", apperror.ErrNotFound, spinID)
	}

	if err := s.spins.IncrementShareCount(ctx, spinID); err != nil {
		return fmt.Errorf("bump share count: %w", err)
	}

	s.log.Debug().Str("spin_id", spinID.String()).Str("shared_by", accountID.String()).Msg("spin shared")

	return s.refreshOwnerAchievements(ctx, spin.AccountID)
}

func (s *spinService) Recent(ctx context.Context, limit int) ([]model.SpinRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.spins.Recent(ctx, limit)
}

func (s *spinService) evaluateAchievements(ctx context.Context, accountID uuid.UUID, result *ActionResult) ([]Achievement, error) {
	totals, err := s.spins.TotalsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("aggregate spin totals: %w", err)
	}

	stats := Stats{
		TotalActions:  result.TotalActions,
		CurrentStreak: result.CurrentStreak,
		CategoryCount: len(result.CategoriesSeen),
		RareCount:     result.RareCount,
		ShareCount:    totals.ShareCount,
		VoteCount:     totals.VoteCount,
	}

	unlocked, err := s.achievements.Evaluate(ctx, accountID, stats)
	if err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}
	return unlocked, nil
}

// refreshOwnerAchievements re-evaluates the spin owner after a share or vote
// changed their totals.
func (s *spinService) refreshOwnerAchievements(ctx context.Context, ownerID uuid.UUID) error {
	streak, err := s.streaks.Get(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("read streak: %w", err)
	}

	result := &ActionResult{
		CurrentStreak:  streak.CurrentStreak,
		LongestStreak:  streak.LongestStreak,
		CategoriesSeen: streak.Categories(),
		TotalActions:   streak.TotalActions,
		RareCount:      streak.RareCount,
	}
	if _, err := s.evaluateAchievements(ctx, ownerID, result); err != nil {
		return err
	}
	return nil
}

func unlockedDTOs(unlocked []Achievement) []dto.UnlockedAchievement {
	out := make([]dto.UnlockedAchievement, 0, len(unlocked))
	for _, a := range unlocked {
		out = append(out, dto.UnlockedAchievement{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			RewardSpins: a.RewardSpins,
		})
	}
	return out
}
