package models

import (
	"encoding/json"
	"time"
)

// WebhookEvent is a row of the webhook_events table.
type WebhookEvent struct {
	ID               string          `db:"id"`
	WebhookEventID   string          `db:"webhook_event_id"`
	ApplicationID    string          `db:"application_id"`
	EventType        string          `db:"event_type"`
	Payload          json.RawMessage `db:"payload"`
	Status           string          `db:"status"`
	RetryCount       int             `db:"retry_count"`
	ProcessedAt      *time.Time      `db:"processed_at"`
	ProcessingResult json.RawMessage `db:"processing_result"` // Nullable
	ErrorMessage     *string         `db:"error_message"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}
