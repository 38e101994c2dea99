package dto

import (
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineItemRequest is one debit or credit line of a new entry.
type CreateLineItemRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Memo         string          `json:"memo"`
}

// CreateEntryRequest defines the data needed to create a draft journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time               `json:"entryDate" binding:"required"`
	Description string                  `json:"description"`
	SourceType  domain.SourceType       `json:"sourceType"` // Defaults to manual
	SourceID    *string                 `json:"sourceID"`
	LineItems   []CreateLineItemRequest `json:"lineItems" binding:"required,min=2,dive"`
}

// ReverseEntryRequest optionally dates the reversing entry.
type ReverseEntryRequest struct {
	EntryDate *time.Time `json:"entryDate"`
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	PeriodID  *string `form:"periodID"`
	Status    *string `form:"status" binding:"omitempty,oneof=draft posted"`
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken *string `form:"nextToken"`
}

// LineItemResponse defines the data returned for a line item.
type LineItemResponse struct {
	LineItemID   string          `json:"lineItemID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Memo         string          `json:"memo"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID      string             `json:"entryID"`
	PeriodID     string             `json:"periodID"`
	EntryDate    string             `json:"entryDate"`
	Description  string             `json:"description"`
	Status       domain.EntryStatus `json:"status"`
	SourceType   domain.SourceType  `json:"sourceType"`
	SourceID     *string            `json:"sourceID,omitempty"`
	CreatedBy    string             `json:"createdBy"`
	CreatedAt    time.Time          `json:"createdAt"`
	PostedBy     *string            `json:"postedBy,omitempty"`
	PostedAt     *time.Time         `json:"postedAt,omitempty"`
	TotalDebits  decimal.Decimal    `json:"totalDebits"`
	TotalCredits decimal.Decimal    `json:"totalCredits"`
	LineItems    []LineItemResponse `json:"lineItems,omitempty"`
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToLineItems converts line item requests to domain line items.
func ToLineItems(reqs []CreateLineItemRequest) []domain.JournalLineItem {
	lines := make([]domain.JournalLineItem, len(reqs))
	for i, r := range reqs {
		lines[i] = domain.JournalLineItem{
			AccountID:    r.AccountID,
			DebitAmount:  r.DebitAmount,
			CreditAmount: r.CreditAmount,
			Memo:         r.Memo,
		}
	}
	return lines
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	debits, credits := e.Totals()
	resp := EntryResponse{
		EntryID:      e.EntryID,
		PeriodID:     e.PeriodID,
		EntryDate:    e.EntryDate.Format(DateLayout),
		Description:  e.Description,
		Status:       e.Status,
		SourceType:   e.SourceType,
		SourceID:     e.SourceID,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
		PostedBy:     e.PostedBy,
		PostedAt:     e.PostedAt,
		TotalDebits:  debits,
		TotalCredits: credits,
	}
	if len(e.LineItems) > 0 {
		resp.LineItems = make([]LineItemResponse, len(e.LineItems))
		for i, l := range e.LineItems {
			resp.LineItems[i] = LineItemResponse{
				LineItemID:   l.LineItemID,
				AccountID:    l.AccountID,
				DebitAmount:  l.DebitAmount,
				CreditAmount: l.CreditAmount,
				Memo:         l.Memo,
			}
		}
	}
	return resp
}
