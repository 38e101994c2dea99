package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithError writes err using the status its kind maps to. Unexpected
// errors are logged and hidden behind fallbackMsg.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallbackMsg})
		return
	}

	logger.Warn(fallbackMsg, slog.String("error", err.Error()), slog.Int("status", status))
	body := gin.H{"error": err.Error()}

	var unbalanced *apperrors.UnbalancedEntryError
	if errors.As(err, &unbalanced) {
		body["totalDebits"] = unbalanced.Debits.StringFixed(2)
		body["totalCredits"] = unbalanced.Credits.StringFixed(2)
		body["delta"] = unbalanced.Delta().StringFixed(2)
	}
	c.JSON(status, body)
}

// requestIdentity returns the organization and user the request acts for.
// It responds 401 and returns ok=false when either is missing.
func requestIdentity(c *gin.Context, logger *slog.Logger) (orgID, userID string, ok bool) {
	userID, userOK := middleware.GetUserIDFromContext(c)
	orgID, orgOK := middleware.GetOrganizationIDFromContext(c)
	if !userOK || !orgOK {
		logger.Error("User or organization ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	return orgID, userID, true
}
