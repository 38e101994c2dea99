package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/pagination"
	"github.com/google/uuid"
)

var ignoredResult = json.RawMessage(`{"ignored":true}`)

// DefaultClaimTimeout is how long a received event may sit unfinished before another
// delivery or the retry list may take it over.
const DefaultClaimTimeout = 5 * time.Minute

// webhookService is the idempotency ledger for payment gateway events.
type webhookService struct {
	BaseService
	repo         portsrepo.WebhookEventRepository
	maxRetries   int
	claimTimeout time.Duration

	mu       sync.RWMutex
	handlers map[string]portssvc.WebhookHandlerFunc
}

// NewWebhookService creates a new webhook ledger. Failed events stop being
// retryable once they reach maxRetries attempts. A non-positive claimTimeout
// falls back to DefaultClaimTimeout.
func NewWebhookService(repo portsrepo.WebhookEventRepository, maxRetries int, claimTimeout time.Duration, options ...ServiceOption) portssvc.WebhookSvcFacade {
	if claimTimeout <= 0 {
		claimTimeout = DefaultClaimTimeout
	}
	return &webhookService{
		BaseService:  newBaseService(options),
		repo:         repo,
		maxRetries:   maxRetries,
		claimTimeout: claimTimeout,
		handlers:     make(map[string]portssvc.WebhookHandlerFunc),
	}
}

// now is truncated to the storage precision so a stored updated_at can serve as a lease.
func (s *webhookService) now() time.Time {
	return s.Now().Truncate(time.Microsecond)
}

var _ portssvc.WebhookSvcFacade = (*webhookService)(nil)

func (s *webhookService) RecordEvent(ctx context.Context, req dto.RecordWebhookEventRequest) (*domain.RecordResult, error) {
	if strings.TrimSpace(req.WebhookEventID) == "" || strings.TrimSpace(req.ApplicationID) == "" || strings.TrimSpace(req.EventType) == "" {
		return nil, fmt.Errorf("%w: webhook event ID, application ID and event type are required", apperrors.ErrValidation)
	}
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: webhook payload is not valid JSON", apperrors.ErrValidation)
	}

	now := s.now()
	event := domain.WebhookEvent{
		ID:             uuid.NewString(),
		WebhookEventID: req.WebhookEventID,
		ApplicationID:  req.ApplicationID,
		EventType:      req.EventType,
		Payload:        payload,
		Status:         domain.WebhookReceived,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	stored, inserted, err := s.repo.InsertEventIfAbsent(ctx, event)
	if err != nil {
		s.LogError(ctx, err, "Failed to record webhook event", slog.String("webhook_event_id", req.WebhookEventID))
		return nil, err
	}
	if !inserted {
		s.LogInfo(ctx, "Duplicate webhook delivery",
			slog.String("webhook_event_id", req.WebhookEventID),
			slog.String("status", string(stored.Status)))
	}
	return &domain.RecordResult{IsNew: inserted, Event: stored}, nil
}

func (s *webhookService) MarkProcessed(ctx context.Context, webhookEventID string, result json.RawMessage) error {
	return s.markProcessed(ctx, webhookEventID, nil, result)
}

func (s *webhookService) markProcessed(ctx context.Context, webhookEventID string, lease *time.Time, result json.RawMessage) error {
	if err := s.repo.MarkEventProcessed(ctx, webhookEventID, lease, result, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to mark webhook event processed", slog.String("webhook_event_id", webhookEventID))
		return err
	}
	return nil
}

func (s *webhookService) MarkFailed(ctx context.Context, webhookEventID string, errorMessage string, incrementRetry bool) error {
	return s.markFailed(ctx, webhookEventID, nil, errorMessage, incrementRetry)
}

func (s *webhookService) markFailed(ctx context.Context, webhookEventID string, lease *time.Time, errorMessage string, incrementRetry bool) error {
	if err := s.repo.MarkEventFailed(ctx, webhookEventID, lease, errorMessage, incrementRetry, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to mark webhook event failed", slog.String("webhook_event_id", webhookEventID))
		return err
	}
	return nil
}

func (s *webhookService) IsProcessed(ctx context.Context, webhookEventID string) (bool, error) {
	event, err := s.repo.FindEventByWebhookID(ctx, webhookEventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return event.IsProcessed(), nil
}

func (s *webhookService) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive", apperrors.ErrValidation)
	}
	cutoff := s.Now().Add(-time.Duration(days) * 24 * time.Hour)
	deleted, err := s.repo.DeleteEventsOlderThan(ctx, cutoff)
	if err != nil {
		s.LogError(ctx, err, "Failed to clean up webhook events", slog.Int("days", days))
		return 0, err
	}
	s.LogInfo(ctx, "Webhook events cleaned up", slog.Int("days", days), slog.Int64("deleted", deleted))
	return deleted, nil
}

func (s *webhookService) RegisterHandler(eventType string, handler portssvc.WebhookHandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[eventType] = handler
}

func (s *webhookService) handlerFor(eventType string) (portssvc.WebhookHandlerFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[eventType]
	return h, ok
}

func (s *webhookService) ProcessOnce(ctx context.Context, req dto.RecordWebhookEventRequest) (*domain.RecordResult, error) {
	res, err := s.RecordEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	event := res.Event
	if event.IsProcessed() {
		return res, nil
	}

	if !res.IsNew {
		if event.Status == domain.WebhookFailed && event.RetryCount >= s.maxRetries {
			s.LogInfo(ctx, "Webhook event exhausted its retries",
				slog.String("webhook_event_id", event.WebhookEventID),
				slog.Int("retry_count", event.RetryCount))
			return res, nil
		}
		claimed, ok, err := s.claim(ctx, event.WebhookEventID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Processed meanwhile, or another delivery holds a live claim.
			return s.refresh(ctx, res)
		}
		event = claimed
	}

	// Bookkeeping must land even if the caller goes away once the handler has run.
	markCtx := context.WithoutCancel(ctx)
	lease := event.UpdatedAt

	handler, ok := s.handlerFor(event.EventType)
	if !ok {
		if err := s.markProcessed(markCtx, event.WebhookEventID, &lease, ignoredResult); err != nil {
			return nil, err
		}
		return s.refresh(markCtx, res)
	}

	result, handlerErr := handler(ctx, event)
	if handlerErr != nil {
		s.LogError(ctx, handlerErr, "Webhook handler failed",
			slog.String("webhook_event_id", event.WebhookEventID),
			slog.String("event_type", event.EventType))
		if err := s.markFailed(markCtx, event.WebhookEventID, &lease, handlerErr.Error(), true); err != nil {
			return nil, err
		}
		refreshed, err := s.refresh(markCtx, res)
		if err != nil {
			return nil, err
		}
		return refreshed, fmt.Errorf("webhook handler for %s: %w", event.EventType, handlerErr)
	}

	if err := s.markProcessed(markCtx, event.WebhookEventID, &lease, result); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Webhook event processed",
		slog.String("webhook_event_id", event.WebhookEventID),
		slog.String("event_type", event.EventType))
	return s.refresh(markCtx, res)
}

// claim takes over a failed or abandoned event. At most one concurrent caller succeeds.
func (s *webhookService) claim(ctx context.Context, webhookEventID string) (*domain.WebhookEvent, bool, error) {
	now := s.now()
	event, ok, err := s.repo.ClaimEvent(ctx, webhookEventID, s.maxRetries, now.Add(-s.claimTimeout), now)
	if err != nil {
		s.LogError(ctx, err, "Failed to claim webhook event", slog.String("webhook_event_id", webhookEventID))
		return nil, false, err
	}
	return event, ok, nil
}

func (s *webhookService) ListRetryable(ctx context.Context, limit int) ([]domain.WebhookEvent, error) {
	staleBefore := s.now().Add(-s.claimTimeout)
	events, err := s.repo.ListRetryableEvents(ctx, s.maxRetries, staleBefore, pagination.NormalizeLimit(limit))
	if err != nil {
		s.LogError(ctx, err, "Failed to list retryable webhook events")
		return nil, err
	}
	if events == nil {
		events = []domain.WebhookEvent{}
	}
	return events, nil
}

func (s *webhookService) refresh(ctx context.Context, res *domain.RecordResult) (*domain.RecordResult, error) {
	event, err := s.repo.FindEventByWebhookID(ctx, res.Event.WebhookEventID)
	if err != nil {
		return nil, err
	}
	return &domain.RecordResult{IsNew: res.IsNew, Event: event}, nil
}
