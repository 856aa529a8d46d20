package service

import (
	"context"

	"github.com/pixelspin/pixelspin/internal/dto"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/repository"
)

const defaultLeaderboardLimit = 10

// LeaderboardService produces ranked read-only views over recorded spins and
// streaks. It has no write side and tolerates an empty corpus.
type LeaderboardService interface {
	// TopByVotes ranks spins by vote count. The category argument is accepted
	// but ignored: every category view currently degrades to the global vote
	// ranking, matching the live product.
	TopByVotes(ctx context.Context, limit int, category string) ([]dto.SpinRanking, error)

	TopByStreak(ctx context.Context, limit int) ([]dto.StreakRanking, error)
	TopBySpins(ctx context.Context, limit int) ([]dto.StreakRanking, error)
}

type leaderboardService struct {
	repo repository.LeaderboardRepository
}

func NewLeaderboardService(repo repository.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo}
}

func (s *leaderboardService) TopByVotes(ctx context.Context, limit int, category string) ([]dto.SpinRanking, error) {
	_ = category

	spins, err := s.repo.TopByVotes(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}

	entries := make([]dto.SpinRanking, 0, len(spins))
	for i, spin := range spins {
		entries = append(entries, dto.SpinRanking{
			Position:   i + 1,
			SpinID:     spin.ID,
			AccountID:  spin.AccountID,
			Category:   spin.Category,
			Descriptor: spin.Descriptor,
			IsRare:     spin.IsRare,
			VoteCount:  spin.VoteCount,
			ShareCount: spin.ShareCount,
			CreatedAt:  spin.CreatedAt,
		})
	}
	return entries, nil
}

func (s *leaderboardService) TopByStreak(ctx context.Context, limit int) ([]dto.StreakRanking, error) {
	streaks, err := s.repo.TopByStreak(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return streakRankings(streaks), nil
}

func (s *leaderboardService) TopBySpins(ctx context.Context, limit int) ([]dto.StreakRanking, error) {
	streaks, err := s.repo.TopBySpins(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return streakRankings(streaks), nil
}

func streakRankings(streaks []model.StreakRecord) []dto.StreakRanking {
	entries := make([]dto.StreakRanking, 0, len(streaks))
	for i, streak := range streaks {
		entries = append(entries, dto.StreakRanking{
			Position:       i + 1,
			AccountID:      streak.AccountID,
			CurrentStreak:  streak.CurrentStreak,
			LongestStreak:  streak.LongestStreak,
			TotalSpins:     streak.TotalActions,
			LastActionDate: streak.LastActionDate,
		})
	}
	return entries
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultLeaderboardLimit
	}
	return limit
}
