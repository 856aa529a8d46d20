package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/dto"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/service"
	"github.com/pixelspin/pixelspin/pkg/response"
	"github.com/pixelspin/pixelspin/pkg/validator"
)

type SpinHandler struct {
	service service.SpinService
}

func NewSpinHandler(service service.SpinService) *SpinHandler {
	return &SpinHandler{service: service}
}

// CreateSpin handles POST /api/spins. Anonymous callers pass only through the
// rate limiter: the spin is classified but nothing is recorded and no
// progression runs.
func (h *SpinHandler) CreateSpin(c *gin.Context) {
	var req dto.SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	accountID, err := response.GetAccountID(c)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"category":   req.Category,
			"descriptor": req.Descriptor,
			"is_rare":    service.IsRareDescriptor(req.Descriptor),
			"recorded":   false,
		})
		return
	}

	tier := model.Tier(response.GetTier(c))

	resp, err := h.service.Spin(c.Request.Context(), accountID, tier, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// Vote handles POST /api/spins/:id/vote.
func (h *SpinHandler) Vote(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	spinID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spin id"})
		return
	}

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.Vote(c.Request.Context(), accountID, spinID, model.VoteKind(req.Kind)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "vote recorded"})
}

// Share handles POST /api/spins/:id/share.
func (h *SpinHandler) Share(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	spinID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spin id"})
		return
	}

	if err := h.service.Share(c.Request.Context(), accountID, spinID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "share recorded"})
}

// Recent handles GET /api/spins/recent.
func (h *SpinHandler) Recent(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)

	spins, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": spins})
}
