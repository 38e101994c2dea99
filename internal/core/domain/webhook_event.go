package domain

import (
	"encoding/json"
	"time"
)

// WebhookStatus tracks how far an inbound gateway event has been processed.
type WebhookStatus string

const (
	WebhookReceived  WebhookStatus = "received"
	WebhookProcessed WebhookStatus = "processed"
	WebhookFailed    WebhookStatus = "failed"
)

// WebhookEvent is one delivery from the payment gateway, stored once per
// gateway-assigned WebhookEventID.
type WebhookEvent struct {
	ID               string          `json:"id"`
	WebhookEventID   string          `json:"webhookEventID"`
	ApplicationID    string          `json:"applicationID"`
	EventType        string          `json:"eventType"`
	Payload          json.RawMessage `json:"payload"`
	Status           WebhookStatus   `json:"status"`
	RetryCount       int             `json:"retryCount"`
	ProcessedAt      *time.Time      `json:"processedAt,omitempty"`
	ProcessingResult json.RawMessage `json:"processingResult,omitempty"`
	ErrorMessage     *string         `json:"errorMessage,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// IsProcessed reports whether business effects for the event were applied.
func (e *WebhookEvent) IsProcessed() bool {
	return e.Status == WebhookProcessed
}

// RecordResult is returned by the webhook ledger when an event is recorded.
type RecordResult struct {
	IsNew bool
	Event *WebhookEvent
}
