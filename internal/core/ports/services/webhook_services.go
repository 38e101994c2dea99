package services

import (
	"context"
	"encoding/json"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
)

// WebhookHandlerFunc applies the business effect of an event and returns a result
// to store alongside it.
type WebhookHandlerFunc func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error)

// WebhookLedgerSvc records inbound gateway events exactly once.
type WebhookLedgerSvc interface {
	// RecordEvent stores the event unless it is already known.
	RecordEvent(ctx context.Context, req dto.RecordWebhookEventRequest) (*domain.RecordResult, error)

	MarkProcessed(ctx context.Context, webhookEventID string, result json.RawMessage) error
	MarkFailed(ctx context.Context, webhookEventID string, errorMessage string, incrementRetry bool) error

	// IsProcessed must be consulted before applying any business effect of an event.
	IsProcessed(ctx context.Context, webhookEventID string) (bool, error)

	// CleanupOlderThan removes events older than the given number of days.
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}

// WebhookProcessorSvc drives the record, guard, handle and mark flow.
type WebhookProcessorSvc interface {
	// RegisterHandler binds a business handler to an event type.
	RegisterHandler(eventType string, handler WebhookHandlerFunc)

	// ProcessOnce records the event and runs its handler at most once to success.
	ProcessOnce(ctx context.Context, req dto.RecordWebhookEventRequest) (*domain.RecordResult, error)

	// ListRetryable returns failed events below the retry limit and received events whose claim has expired.
	ListRetryable(ctx context.Context, limit int) ([]domain.WebhookEvent, error)
}

// WebhookSvcFacade combines all webhook-related service interfaces
type WebhookSvcFacade interface {
	WebhookLedgerSvc
	WebhookProcessorSvc
}
