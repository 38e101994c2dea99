package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table. Line items live in
// journal_line_items and are loaded separately.
type JournalEntry struct {
	EntryID        string     `db:"entry_id"`
	OrganizationID string     `db:"organization_id"`
	PeriodID       string     `db:"period_id"`
	EntryDate      time.Time  `db:"entry_date"`
	Description    string     `db:"description"`
	Status         string     `db:"status"`
	SourceType     string     `db:"source_type"`
	SourceID       *string    `db:"source_id"`
	CreatedBy      string     `db:"created_by"`
	CreatedAt      time.Time  `db:"created_at"`
	PostedBy       *string    `db:"posted_by"`
	PostedAt       *time.Time `db:"posted_at"`
}

// JournalLineItem is a row of the journal_line_items table.
type JournalLineItem struct {
	LineItemID   string          `db:"line_item_id"`
	EntryID      string          `db:"entry_id"`
	LineNumber   int             `db:"line_number"`
	AccountID    string          `db:"account_id"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	Memo         string          `db:"memo"`
}
