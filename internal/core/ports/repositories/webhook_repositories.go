package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// WebhookEventRepository persists inbound gateway events.
type WebhookEventRepository interface {
	// InsertEventIfAbsent stores the event unless its WebhookEventID is already known.
	// It returns the stored row and whether this call inserted it.
	InsertEventIfAbsent(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookEvent, bool, error)

	// FindEventByWebhookID retrieves an event by the gateway-assigned ID.
	FindEventByWebhookID(ctx context.Context, webhookEventID string) (*domain.WebhookEvent, error)

	// ClaimEvent moves a retryable event back to received so exactly one caller runs its
	// handler. Failed events below maxRetries and received events last touched before
	// staleBefore are retryable. It returns the claimed row and whether the claim succeeded.
	ClaimEvent(ctx context.Context, webhookEventID string, maxRetries int, staleBefore, claimedAt time.Time) (*domain.WebhookEvent, bool, error)

	// MarkEventProcessed records a successful business handler run. Only received events
	// transition. A non-nil lease also requires updated_at to still equal it.
	MarkEventProcessed(ctx context.Context, webhookEventID string, lease *time.Time, result json.RawMessage, processedAt time.Time) error

	// MarkEventFailed records a failed business handler run, with the same transition rule
	// as MarkEventProcessed.
	MarkEventFailed(ctx context.Context, webhookEventID string, lease *time.Time, errorMessage string, incrementRetry bool, failedAt time.Time) error

	// ListRetryableEvents retrieves failed events with fewer than maxRetries attempts and
	// received events abandoned before staleBefore, oldest first.
	ListRetryableEvents(ctx context.Context, maxRetries int, staleBefore time.Time, limit int) ([]domain.WebhookEvent, error)

	// DeleteEventsOlderThan removes events created before cutoff and returns how many were removed.
	DeleteEventsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
