package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/service"
	"github.com/pixelspin/pixelspin/pkg/response"
)

type QuotaHandler struct {
	quota service.QuotaTracker
}

func NewQuotaHandler(quota service.QuotaTracker) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

// GetQuota handles GET /api/quota.
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	tier := model.Tier(response.GetTier(c))

	snapshot, err := h.quota.Remaining(c.Request.Context(), accountID, tier)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"remaining": snapshot.Remaining,
		"resets_at": snapshot.ResetsAt,
		"tier":      tier,
	})
}
