package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type periodHandler struct {
	periodService    portssvc.PeriodSvcFacade
	reportingService portssvc.ReportingService
}

func newPeriodHandler(ps portssvc.PeriodSvcFacade, rs portssvc.ReportingService) *periodHandler {
	return &periodHandler{periodService: ps, reportingService: rs}
}

// RegisterPeriodRoutes registers routes related to accounting periods and their reports.
func RegisterPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade, reportingService portssvc.ReportingService) {
	h := newPeriodHandler(periodService, reportingService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/:periodID", h.getPeriod)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.GET("/:periodID/trial-balance", h.trialBalance)
	}
}

// createPeriod godoc
// @Summary Create an accounting period
// @Description Opens a new period. Periods of one organization never overlap.
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   period body dto.CreatePeriodRequest true "Period details"
// @Success 201 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid input or overlapping period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create period"
// @Security BearerAuth
// @Router /periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), orgID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create period")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// listPeriods godoc
// @Summary List accounting periods
// @Tags periods
// @Produce  json
// @Success 200 {object} dto.ListPeriodsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Security BearerAuth
// @Router /periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), orgID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list periods")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPeriodsResponse(periods))
}

// getPeriod godoc
// @Summary Get an accounting period
// @Tags periods
// @Produce  json
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Security BearerAuth
// @Router /periods/{periodID} [get]
func (h *periodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.GetPeriodByID(c.Request.Context(), orgID, c.Param("periodID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// closePeriod godoc
// @Summary Close an accounting period
// @Description Closes the period. Fails while draft entries remain in it.
// @Tags periods
// @Produce  json
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Already closed or drafts remain"
// @Failure 500 {object} map[string]string "Failed to close period"
// @Security BearerAuth
// @Router /periods/{periodID}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	periodID := c.Param("periodID")

	period, err := h.periodService.ClosePeriod(c.Request.Context(), orgID, periodID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("period_id", periodID)), err, "Failed to close period")
		return
	}
	logger.Info("Period closed", slog.String("period_id", periodID))
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// trialBalance godoc
// @Summary Trial balance for a period
// @Description Posted debit and credit totals per account. Drafts are excluded.
// @Tags reports
// @Produce  json
// @Param   periodID path string true "Period ID"
// @Success 200 {object} domain.TrialBalance
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to build trial balance"
// @Security BearerAuth
// @Router /periods/{periodID}/trial-balance [get]
func (h *periodHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), orgID, c.Param("periodID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, tb)
}
