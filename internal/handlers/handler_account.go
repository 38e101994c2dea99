package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.POST("/initialize", h.initializeDefaults)
		accounts.GET("/:accountID", h.getAccount)
		accounts.POST("/:accountID/deactivate", h.deactivateAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the organization's chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account code already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), orgID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Description Lists every account of the organization, active and inactive, ordered by code
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	accounts, err := h.accountService.GetChartOfAccounts(c.Request.Context(), orgID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), orgID, accountID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive. Accounts referenced by draft entries cannot be deactivated.
// @Tags accounts
// @Param   accountID path string true "Account ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account is referenced by a draft entry"
// @Failure 500 {object} map[string]string "Failed to deactivate account"
// @Security BearerAuth
// @Router /accounts/{accountID}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("accountID")

	if err := h.accountService.DeactivateAccount(c.Request.Context(), orgID, accountID, userID); err != nil {
		respondWithError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}

// initializeDefaults godoc
// @Summary Seed the default chart of accounts
// @Description Creates the standard nonprofit chart for an organization that has no accounts yet. Returns the existing chart otherwise.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   request body dto.InitializeChartRequest false "Organization type"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} map[string]string "Unknown organization type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to initialize chart of accounts"
// @Security BearerAuth
// @Router /accounts/initialize [post]
func (h *accountHandler) initializeDefaults(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	var req dto.InitializeChartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	accounts, err := h.accountService.InitializeDefaults(c.Request.Context(), orgID, req.OrganizationType, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to initialize chart of accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}
