package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type autoPostHandler struct {
	autoPoster portssvc.AutoPosterSvc
}

// RegisterAutoPostRoutes registers the donation posting route.
func RegisterAutoPostRoutes(rg *gin.RouterGroup, autoPoster portssvc.AutoPosterSvc) {
	h := &autoPostHandler{autoPoster: autoPoster}
	rg.POST("/donations/auto-post", h.postDonations)
}

// postDonations godoc
// @Summary Post donations to the journal
// @Description Creates one balanced entry per donation in the period or date range. Donations already posted are skipped; per-donation failures are listed in the result.
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   request body dto.AutoPostRequest true "Period ID or from/to range"
// @Success 200 {object} dto.AutoPostResult
// @Failure 400 {object} map[string]string "Invalid range or period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to post donations"
// @Security BearerAuth
// @Router /donations/auto-post [post]
func (h *autoPostHandler) postDonations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var req dto.AutoPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AutoPost", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.autoPoster.PostDonationsToJournal(c.Request.Context(), orgID, userID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to post donations")
		return
	}
	logger.Info("Donations posted",
		slog.Int("entries_created", result.EntriesCreated),
		slog.Int("donations_skipped", result.DonationsSkipped),
		slog.Int("errors", len(result.Errors)))
	c.JSON(http.StatusOK, result)
}
