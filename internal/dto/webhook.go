package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// WebhookDeliveryRequest is the body the payment gateway posts to the receiver.
type WebhookDeliveryRequest struct {
	WebhookEventID string          `json:"webhookEventId" binding:"required,max=191"`
	EventType      string          `json:"eventType" binding:"required,max=100"`
	Payload        json.RawMessage `json:"payload"`
}

// RecordWebhookEventRequest is what the webhook ledger needs to record an event.
type RecordWebhookEventRequest struct {
	WebhookEventID string
	ApplicationID  string
	EventType      string
	Payload        json.RawMessage
}

// WebhookDeliveryResponse is returned to the gateway.
type WebhookDeliveryResponse struct {
	IsNew  bool                 `json:"isNew"`
	Status domain.WebhookStatus `json:"status"`
}

// WebhookEventResponse defines the data returned for a stored event.
type WebhookEventResponse struct {
	WebhookEventID string               `json:"webhookEventId"`
	ApplicationID  string               `json:"applicationId"`
	EventType      string               `json:"eventType"`
	Status         domain.WebhookStatus `json:"status"`
	RetryCount     int                  `json:"retryCount"`
	ErrorMessage   *string              `json:"errorMessage,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// CleanupResponse reports how many events retention removed.
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// ToWebhookEventResponses converts stored events.
func ToWebhookEventResponses(events []domain.WebhookEvent) []WebhookEventResponse {
	resp := make([]WebhookEventResponse, len(events))
	for i, e := range events {
		resp[i] = WebhookEventResponse{
			WebhookEventID: e.WebhookEventID,
			ApplicationID:  e.ApplicationID,
			EventType:      e.EventType,
			Status:         e.Status,
			RetryCount:     e.RetryCount,
			ErrorMessage:   e.ErrorMessage,
			CreatedAt:      e.CreatedAt,
		}
	}
	return resp
}
