package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const webhookColumns = `id, webhook_event_id, application_id, event_type, payload, status, retry_count,
	processed_at, processing_result, error_message, created_at, updated_at`

type PgxWebhookRepository struct {
	BaseRepository
}

func newPgxWebhookRepository(pool *pgxpool.Pool) *PgxWebhookRepository {
	return &PgxWebhookRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WebhookEventRepository = (*PgxWebhookRepository)(nil)

func (r *PgxWebhookRepository) findMany(ctx context.Context, query string, args ...any) ([]domain.WebhookEvent, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.WebhookEvent])
	if err != nil {
		return nil, err
	}
	events := make([]domain.WebhookEvent, len(ms))
	for i, m := range ms {
		events[i] = mapping.ToDomainWebhookEvent(m)
	}
	return events, nil
}

// InsertEventIfAbsent relies on the unique webhook_event_id index so concurrent
// deliveries of one event produce exactly one inserted row.
func (r *PgxWebhookRepository) InsertEventIfAbsent(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookEvent, bool, error) {
	m := mapping.ToModelWebhookEvent(event)
	inserted, err := r.findMany(ctx, `
		INSERT INTO webhook_events (`+webhookColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (webhook_event_id) DO NOTHING
		RETURNING `+webhookColumns,
		m.ID, m.WebhookEventID, m.ApplicationID, m.EventType, m.Payload, m.Status, m.RetryCount,
		m.ProcessedAt, m.ProcessingResult, m.ErrorMessage, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert webhook event %s: %w", event.WebhookEventID, err)
	}
	if len(inserted) == 1 {
		return &inserted[0], true, nil
	}

	existing, err := r.FindEventByWebhookID(ctx, event.WebhookEventID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PgxWebhookRepository) FindEventByWebhookID(ctx context.Context, webhookEventID string) (*domain.WebhookEvent, error) {
	events, err := r.findMany(ctx, `SELECT `+webhookColumns+` FROM webhook_events WHERE webhook_event_id = $1`, webhookEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to find webhook event %s: %w", webhookEventID, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("webhook event %s: %w", webhookEventID, apperrors.ErrNotFound)
	}
	return &events[0], nil
}

// ClaimEvent is a single conditional UPDATE so two deliveries racing on the same
// retryable row cannot both win.
func (r *PgxWebhookRepository) ClaimEvent(ctx context.Context, webhookEventID string, maxRetries int, staleBefore, claimedAt time.Time) (*domain.WebhookEvent, bool, error) {
	claimed, err := r.findMany(ctx, `
		UPDATE webhook_events
		SET status = $2, updated_at = $3
		WHERE webhook_event_id = $1
		  AND ((status = $4 AND retry_count < $5) OR (status = $2 AND updated_at < $6))
		RETURNING `+webhookColumns,
		webhookEventID, string(domain.WebhookReceived), claimedAt, string(domain.WebhookFailed), maxRetries, staleBefore)
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim webhook event %s: %w", webhookEventID, err)
	}
	if len(claimed) == 0 {
		return nil, false, nil
	}
	return &claimed[0], true, nil
}

func (r *PgxWebhookRepository) MarkEventProcessed(ctx context.Context, webhookEventID string, lease *time.Time, result json.RawMessage, processedAt time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE webhook_events
		SET status = $2, processed_at = $3, processing_result = $4, error_message = NULL, updated_at = $3
		WHERE webhook_event_id = $1 AND status = $5 AND ($6::timestamptz IS NULL OR updated_at = $6)`,
		webhookEventID, string(domain.WebhookProcessed), processedAt, result, string(domain.WebhookReceived), lease)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event %s processed: %w", webhookEventID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.notClaimed(ctx, webhookEventID)
	}
	return nil
}

func (r *PgxWebhookRepository) MarkEventFailed(ctx context.Context, webhookEventID string, lease *time.Time, errorMessage string, incrementRetry bool, failedAt time.Time) error {
	increment := 0
	if incrementRetry {
		increment = 1
	}
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE webhook_events
		SET status = $2, error_message = $3, retry_count = retry_count + $4, updated_at = $5
		WHERE webhook_event_id = $1 AND status = $6 AND ($7::timestamptz IS NULL OR updated_at = $7)`,
		webhookEventID, string(domain.WebhookFailed), errorMessage, increment, failedAt, string(domain.WebhookReceived), lease)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event %s failed: %w", webhookEventID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.notClaimed(ctx, webhookEventID)
	}
	return nil
}

// notClaimed explains why a guarded status update matched no row.
func (r *PgxWebhookRepository) notClaimed(ctx context.Context, webhookEventID string) error {
	event, err := r.FindEventByWebhookID(ctx, webhookEventID)
	if err != nil {
		return err
	}
	return fmt.Errorf("webhook event %s is %s: %w", webhookEventID, event.Status, apperrors.ErrEventNotClaimed)
}

func (r *PgxWebhookRepository) ListRetryableEvents(ctx context.Context, maxRetries int, staleBefore time.Time, limit int) ([]domain.WebhookEvent, error) {
	events, err := r.findMany(ctx, `SELECT `+webhookColumns+` FROM webhook_events
		WHERE (status = $1 AND retry_count < $2) OR (status = $3 AND updated_at < $4)
		ORDER BY created_at
		LIMIT $5`, string(domain.WebhookFailed), maxRetries, string(domain.WebhookReceived), staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list retryable webhook events: %w", err)
	}
	return events, nil
}

func (r *PgxWebhookRepository) DeleteEventsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM webhook_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete webhook events older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}
