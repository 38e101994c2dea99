package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// RegisterJournalRoutes registers routes related to journal entries.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.DELETE("/:entryID", h.deleteEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
		entries.POST("/:entryID/line-items", h.addLineItem)
		entries.DELETE("/:entryID/line-items/:lineItemID", h.removeLineItem)
	}
}

// createEntry godoc
// @Summary Create a draft journal entry
// @Description Validates and stores a draft entry. Debits must equal credits exactly.
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateEntryRequest true "Entry with at least two line items"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Validation error, unbalanced entry or no open period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Period closed or source already recorded"
// @Failure 500 {object} map[string]string "Failed to create journal entry"
// @Security BearerAuth
// @Router /journal-entries [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.journalService.CreateEntry(c.Request.Context(), orgID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Lists entries newest first with token-based pagination
// @Tags journal
// @Produce  json
// @Param   periodID query string false "Filter by period"
// @Param   status query string false "Filter by status (draft, posted)"
// @Param   limit query int false "Page size (default 50, max 200)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list journal entries"
// @Security BearerAuth
// @Router /journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), orgID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a journal entry
// @Tags journal
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.GetEntry(c.Request.Context(), orgID, c.Param("entryID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// postEntry godoc
// @Summary Post a draft journal entry
// @Description Makes the entry permanent. Balance, accounts and the period are re-checked.
// @Tags journal
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Entry no longer valid"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Already posted or period closed"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	entryID := c.Param("entryID")

	entry, err := h.journalService.PostEntry(c.Request.Context(), orgID, entryID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("entry_id", entryID)), err, "Failed to post journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a draft journal entry
// @Tags journal
// @Param   entryID path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Posted entries cannot be deleted"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [delete]
func (h *journalHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	if err := h.journalService.DeleteEntry(c.Request.Context(), orgID, c.Param("entryID")); err != nil {
		respondWithError(c, logger, err, "Failed to delete journal entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// reverseEntry godoc
// @Summary Reverse a posted journal entry
// @Description Creates a draft entry with debits and credits swapped
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.ReverseEntryRequest false "Optional date of the reversing entry"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Entry is not posted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reversed"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var req dto.ReverseEntryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	entry, err := h.journalService.ReverseEntry(c.Request.Context(), orgID, c.Param("entryID"), req.EntryDate, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reverse journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// addLineItem godoc
// @Summary Add a line item to a draft entry
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   line body dto.CreateLineItemRequest true "Line item"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid line item"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Posted entries cannot be modified"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/line-items [post]
func (h *journalHandler) addLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var req dto.CreateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.journalService.AddLineItem(c.Request.Context(), orgID, c.Param("entryID"), req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add line item")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// removeLineItem godoc
// @Summary Remove a line item from a draft entry
// @Tags journal
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   lineItemID path string true "Line item ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry or line item not found"
// @Failure 409 {object} map[string]string "Posted entries cannot be modified"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/line-items/{lineItemID} [delete]
func (h *journalHandler) removeLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.RemoveLineItem(c.Request.Context(), orgID, c.Param("entryID"), c.Param("lineItemID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to remove line item")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}
