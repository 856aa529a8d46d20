package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pixelspin/pixelspin/internal/dto"
	"github.com/pixelspin/pixelspin/internal/service"
	"github.com/pixelspin/pixelspin/pkg/response"
)

type AchievementHandler struct {
	achievements service.AchievementEngine
	streaks      service.StreakEngine
}

func NewAchievementHandler(achievements service.AchievementEngine, streaks service.StreakEngine) *AchievementHandler {
	return &AchievementHandler{achievements: achievements, streaks: streaks}
}

// GetAchievements handles GET /api/achievements: the full catalog merged with
// the account's unlock state.
func (h *AchievementHandler) GetAchievements(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	unlocks, err := h.achievements.Unlocked(c.Request.Context(), accountID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	unlockedAt := make(map[string]int, len(unlocks))
	for i, u := range unlocks {
		unlockedAt[u.AchievementID] = i
	}

	catalog := service.Catalog()
	statuses := make([]dto.AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		status := dto.AchievementStatus{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Requirement: string(a.Requirement),
			Threshold:   a.Threshold,
			RewardSpins: a.RewardSpins,
		}
		if i, ok := unlockedAt[a.ID]; ok {
			status.Unlocked = true
			t := unlocks[i].UnlockedAt
			status.UnlockedAt = &t
		}
		statuses = append(statuses, status)
	}

	c.JSON(http.StatusOK, gin.H{"data": statuses})
}

// GetStreak handles GET /api/streak.
func (h *AchievementHandler) GetStreak(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	rec, err := h.streaks.Get(c.Request.Context(), accountID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.StreakSummary{
		Current:        rec.CurrentStreak,
		Longest:        rec.LongestStreak,
		CategoriesSeen: rec.Categories(),
		TotalSpins:     rec.TotalActions,
		RareCount:      rec.RareCount,
	}})
}
