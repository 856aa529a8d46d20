package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pixelspin/pixelspin/internal/service"
	"github.com/pixelspin/pixelspin/pkg/response"
)

type LeaderboardHandler struct {
	service service.LeaderboardService
}

func NewLeaderboardHandler(service service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// TopByVotes handles GET /api/leaderboard/votes. Accepts a category query
// param for the themed views ("funniest", "most chaotic", ...).
func (h *LeaderboardHandler) TopByVotes(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)

	entries, err := h.service.TopByVotes(c.Request.Context(), limit, c.Query("category"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// TopByStreak handles GET /api/leaderboard/streaks.
func (h *LeaderboardHandler) TopByStreak(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)

	entries, err := h.service.TopByStreak(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// TopBySpins handles GET /api/leaderboard/spins.
func (h *LeaderboardHandler) TopBySpins(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)

	entries, err := h.service.TopBySpins(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
