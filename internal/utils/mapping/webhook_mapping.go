package mapping

import (
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
)

// ToModelWebhookEvent converts a domain WebhookEvent to a model WebhookEvent
func ToModelWebhookEvent(d domain.WebhookEvent) models.WebhookEvent {
	return models.WebhookEvent{
		ID:               d.ID,
		WebhookEventID:   d.WebhookEventID,
		ApplicationID:    d.ApplicationID,
		EventType:        d.EventType,
		Payload:          d.Payload,
		Status:           string(d.Status),
		RetryCount:       d.RetryCount,
		ProcessedAt:      d.ProcessedAt,
		ProcessingResult: d.ProcessingResult,
		ErrorMessage:     d.ErrorMessage,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// ToDomainWebhookEvent converts a model WebhookEvent to a domain WebhookEvent
func ToDomainWebhookEvent(m models.WebhookEvent) domain.WebhookEvent {
	return domain.WebhookEvent{
		ID:               m.ID,
		WebhookEventID:   m.WebhookEventID,
		ApplicationID:    m.ApplicationID,
		EventType:        m.EventType,
		Payload:          m.Payload,
		Status:           domain.WebhookStatus(m.Status),
		RetryCount:       m.RetryCount,
		ProcessedAt:      m.ProcessedAt,
		ProcessingResult: m.ProcessingResult,
		ErrorMessage:     m.ErrorMessage,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
