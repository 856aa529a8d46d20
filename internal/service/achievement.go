package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/repository"
	"github.com/rs/zerolog"
)

type RequirementType string

const (
	ReqActionCount   RequirementType = "action_count"
	ReqStreak        RequirementType = "streak"
	ReqCategoryCount RequirementType = "category_count"
	ReqRareCount     RequirementType = "rare_count"
	ReqShareCount    RequirementType = "share_count"
	ReqVoteCount     RequirementType = "vote_count"
)

// Achievement is one catalog entry. RewardSpins is granted back into the
// account's daily allowance on unlock.
type Achievement struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Requirement RequirementType `json:"requirement"`
	Threshold   int             `json:"threshold"`
	RewardSpins int             `json:"reward_spins"`
}

// achievementCatalog is loaded once and never mutated. Additive changes only:
// requirement values for a released id must not move, or already-granted
// rewards stop matching recomputed eligibility.
var achievementCatalog = []Achievement{
	{ID: "first_spin", Title: "First Spin", Description: "Transform your first image", Requirement: ReqActionCount, Threshold: 1, RewardSpins: 2},
	{ID: "ten_spins", Title: "Getting the Hang of It", Description: "Complete 10 spins", Requirement: ReqActionCount, Threshold: 10, RewardSpins: 3},
	{ID: "fifty_spins", Title: "Spin Addict", Description: "Complete 50 spins", Requirement: ReqActionCount, Threshold: 50, RewardSpins: 5},
	{ID: "streak_3", Title: "Warming Up", Description: "Reach a 3-spin streak", Requirement: ReqStreak, Threshold: 3, RewardSpins: 2},
	{ID: "streak_7", Title: "On Fire", Description: "Reach a 7-spin streak", Requirement: ReqStreak, Threshold: 7, RewardSpins: 5},
	{ID: "streak_30", Title: "Unstoppable", Description: "Reach a 30-spin streak", Requirement: ReqStreak, Threshold: 30, RewardSpins: 10},
	{ID: "category_explorer", Title: "Style Explorer", Description: "Spin in 5 different styles", Requirement: ReqCategoryCount, Threshold: 5, RewardSpins: 3},
	{ID: "rare_hunter", Title: "Rare Hunter", Description: "Land your first rare style", Requirement: ReqRareCount, Threshold: 1, RewardSpins: 2},
	{ID: "rare_collector", Title: "Rare Collector", Description: "Land 5 rare styles", Requirement: ReqRareCount, Threshold: 5, RewardSpins: 5},
	{ID: "first_share", Title: "Show and Tell", Description: "Share a spin", Requirement: ReqShareCount, Threshold: 1, RewardSpins: 1},
	{ID: "crowd_favorite", Title: "Crowd Favorite", Description: "Collect 10 votes on your spins", Requirement: ReqVoteCount, Threshold: 10, RewardSpins: 5},
}

// Catalog returns a copy of the achievement catalog in release order.
func Catalog() []Achievement {
	out := make([]Achievement, len(achievementCatalog))
	copy(out, achievementCatalog)
	return out
}

// Stats is the uniform progression snapshot achievements are evaluated
// against.
type Stats struct {
	TotalActions  int
	CurrentStreak int
	CategoryCount int
	RareCount     int
	ShareCount    int
	VoteCount     int
}

// value dispatches a requirement type to its stats field.
func (s Stats) value(req RequirementType) int {
	switch req {
	case ReqActionCount:
		return s.TotalActions
	case ReqStreak:
		return s.CurrentStreak
	case ReqCategoryCount:
		return s.CategoryCount
	case ReqRareCount:
		return s.RareCount
	case ReqShareCount:
		return s.ShareCount
	case ReqVoteCount:
		return s.VoteCount
	default:
		return 0
	}
}

type AchievementEngine interface {
	// Evaluate unlocks every catalog entry the stats snapshot satisfies and
	// the account has not unlocked yet, granting each reward exactly once.
	// Returns the entries unlocked by this call.
	Evaluate(ctx context.Context, accountID uuid.UUID, stats Stats) ([]Achievement, error)

	Unlocked(ctx context.Context, accountID uuid.UUID) ([]model.AchievementUnlock, error)
}

type achievementEngine struct {
	repo          repository.AchievementRepository
	quota         QuotaTracker
	notifications NotificationService
	now           func() time.Time
	log           zerolog.Logger
}

func NewAchievementEngine(repo repository.AchievementRepository, quota QuotaTracker, notifications NotificationService, log zerolog.Logger) AchievementEngine {
	return &achievementEngine{
		repo:          repo,
		quota:         quota,
		notifications: notifications,
		now:           time.Now,
		log:           log.With().Str("component", "achievements").Logger(),
	}
}

func (e *achievementEngine) Evaluate(ctx context.Context, accountID uuid.UUID, stats Stats) ([]Achievement, error) {
	existing, err := e.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}

	unlockedSet := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		unlockedSet[u.AchievementID] = struct{}{}
	}

	var unlocked []Achievement
	for _, a := range achievementCatalog {
		if _, done := unlockedSet[a.ID]; done {
			continue
		}
		if stats.value(a.Requirement) < a.Threshold {
			continue
		}

		inserted, err := e.repo.InsertUnlock(ctx, accountID, a.ID, e.now())
		if err != nil {
			return unlocked, fmt.Errorf("insert unlock %s: %w", a.ID, err)
		}
		if !inserted {
			// A concurrent evaluation won the insert and granted the reward;
			// the conditional insert working as intended, not an error.
			e.log.Debug().Str("account_id", accountID.String()).Str("achievement", a.ID).Msg("unlock already claimed")
			continue
		}

		if a.RewardSpins > 0 {
			if err := e.quota.Grant(ctx, accountID, a.RewardSpins); err != nil {
				return unlocked, fmt.Errorf("grant reward for %s: %w", a.ID, err)
			}
		}

		if e.notifications != nil {
			e.notifications.Notify(ctx, &model.Notification{
				AccountID: accountID,
				Type:      model.NotificationAchievementUnlocked,
				Message:   fmt.Sprintf("Achievement unlocked: %s (+%d spins)", a.Title, a.RewardSpins),
			})
		}

		e.log.Info().Str("account_id", accountID.String()).Str("achievement", a.ID).Int("reward", a.RewardSpins).Msg("achievement unlocked")
		unlocked = append(unlocked, a)
	}

	return unlocked, nil
}

func (e *achievementEngine) Unlocked(ctx context.Context, accountID uuid.UUID) ([]model.AchievementUnlock, error) {
	return e.repo.ListByAccount(ctx, accountID)
}
