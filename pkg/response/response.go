package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/pkg/apperror"
)

// GetAccountID retrieves the authenticated account ID from the context
func GetAccountID(c *gin.Context) (uuid.UUID, error) {
	idStr, exists := c.Get("account_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	accountID, err := uuid.Parse(idStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return accountID, nil
}

// GetTier retrieves the account tier set by the auth middleware, defaulting
// to free when absent.
func GetTier(c *gin.Context) string {
	tier, exists := c.Get("tier")
	if !exists {
		return "free"
	}
	return tier.(string)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
