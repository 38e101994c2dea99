package mapping

import (
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry. Line items are not included.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:        d.EntryID,
		OrganizationID: d.OrganizationID,
		PeriodID:       d.PeriodID,
		EntryDate:      domain.DateOnly(d.EntryDate),
		Description:    d.Description,
		Status:         string(d.Status),
		SourceType:     string(d.SourceType),
		SourceID:       d.SourceID,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
		PostedBy:       d.PostedBy,
		PostedAt:       d.PostedAt,
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLineItem) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:        m.EntryID,
		OrganizationID: m.OrganizationID,
		PeriodID:       m.PeriodID,
		EntryDate:      domain.DateOnly(m.EntryDate),
		Description:    m.Description,
		Status:         domain.EntryStatus(m.Status),
		SourceType:     domain.SourceType(m.SourceType),
		SourceID:       m.SourceID,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		PostedBy:       m.PostedBy,
		PostedAt:       m.PostedAt,
		LineItems:      make([]domain.JournalLineItem, len(lines)),
	}
	for i, l := range lines {
		d.LineItems[i] = ToDomainLineItem(l)
	}
	return d
}

// ToModelLineItem converts a domain line item to a model line item at the given position
func ToModelLineItem(d domain.JournalLineItem, lineNumber int) models.JournalLineItem {
	return models.JournalLineItem{
		LineItemID:   d.LineItemID,
		EntryID:      d.EntryID,
		LineNumber:   lineNumber,
		AccountID:    d.AccountID,
		DebitAmount:  d.DebitAmount,
		CreditAmount: d.CreditAmount,
		Memo:         d.Memo,
	}
}

// ToDomainLineItem converts a model line item to a domain line item
func ToDomainLineItem(m models.JournalLineItem) domain.JournalLineItem {
	return domain.JournalLineItem{
		LineItemID:   m.LineItemID,
		EntryID:      m.EntryID,
		AccountID:    m.AccountID,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Memo:         m.Memo,
	}
}
