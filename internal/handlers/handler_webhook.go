package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const defaultRetentionDays = 30

type webhookHandler struct {
	webhookService portssvc.WebhookSvcFacade
}

func newWebhookHandler(ws portssvc.WebhookSvcFacade) *webhookHandler {
	return &webhookHandler{webhookService: ws}
}

// RegisterWebhookReceiver registers the public gateway receiver. Callers attach
// signature and rate limit middleware through guards.
func RegisterWebhookReceiver(r gin.IRouter, webhookService portssvc.WebhookSvcFacade, guards ...gin.HandlerFunc) {
	h := newWebhookHandler(webhookService)
	chain := make([]gin.HandlerFunc, 0, len(guards)+1)
	chain = append(chain, guards...)
	r.POST("/webhooks/:applicationID", append(chain, h.receive)...)
}

// RegisterWebhookAdminRoutes registers authenticated routes for inspecting and pruning the event ledger.
func RegisterWebhookAdminRoutes(rg *gin.RouterGroup, webhookService portssvc.WebhookSvcFacade) {
	h := newWebhookHandler(webhookService)

	events := rg.Group("/webhook-events")
	{
		events.GET("/retryable", h.listRetryable)
		events.POST("/cleanup", h.cleanup)
	}
}

// receive godoc
// @Summary Receive a payment gateway event
// @Description Records the event exactly once and runs its handler. Duplicate deliveries answer 200 with isNew=false.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Param   applicationID path string true "Sending application"
// @Param   X-Webhook-Signature header string false "Hex HMAC-SHA256 of the body"
// @Param   event body dto.WebhookDeliveryRequest true "Gateway event"
// @Success 200 {object} dto.WebhookDeliveryResponse
// @Failure 400 {object} map[string]string "Invalid event"
// @Failure 401 {object} map[string]string "Bad signature"
// @Failure 429 {object} map[string]string "Rate limited"
// @Failure 500 {object} dto.WebhookDeliveryResponse "Handler failed, redeliver later"
// @Router /webhooks/{applicationID} [post]
func (h *webhookHandler) receive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.WebhookDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind webhook delivery", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("webhook_event_id", req.WebhookEventID),
		slog.String("event_type", req.EventType))

	res, err := h.webhookService.ProcessOnce(c.Request.Context(), dto.RecordWebhookEventRequest{
		WebhookEventID: req.WebhookEventID,
		ApplicationID:  c.Param("applicationID"),
		EventType:      req.EventType,
		Payload:        req.Payload,
	})
	if err != nil {
		if res == nil {
			respondWithError(c, logger, err, "Failed to record webhook event")
			return
		}
		// Recorded but the handler failed; a non-2xx makes the gateway redeliver.
		logger.Error("Webhook handler failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.WebhookDeliveryResponse{IsNew: res.IsNew, Status: res.Event.Status})
		return
	}

	if !res.IsNew {
		logger.Info("Duplicate webhook delivery", slog.String("status", string(res.Event.Status)))
	}
	c.JSON(http.StatusOK, dto.WebhookDeliveryResponse{IsNew: res.IsNew, Status: res.Event.Status})
}

// listRetryable godoc
// @Summary List retryable webhook events
// @Tags webhooks
// @Produce  json
// @Param   limit query int false "Maximum events (default 50, max 200)"
// @Success 200 {array} dto.WebhookEventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list webhook events"
// @Security BearerAuth
// @Router /webhook-events/retryable [get]
func (h *webhookHandler) listRetryable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, _, ok := requestIdentity(c, logger); !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	events, err := h.webhookService.ListRetryable(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list webhook events")
		return
	}
	c.JSON(http.StatusOK, dto.ToWebhookEventResponses(events))
}

// cleanup godoc
// @Summary Delete old webhook events
// @Tags webhooks
// @Produce  json
// @Param   days query int false "Retention in days (default 30)"
// @Success 200 {object} dto.CleanupResponse
// @Failure 400 {object} map[string]string "Invalid retention"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to clean up webhook events"
// @Security BearerAuth
// @Router /webhook-events/cleanup [post]
func (h *webhookHandler) cleanup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, _, ok := requestIdentity(c, logger); !ok {
		return
	}

	days := defaultRetentionDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		days = n
	}

	deleted, err := h.webhookService.CleanupOlderThan(c.Request.Context(), days)
	if err != nil {
		respondWithError(c, logger, err, "Failed to clean up webhook events")
		return
	}
	c.JSON(http.StatusOK, dto.CleanupResponse{Deleted: deleted})
}
