package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry. Posted is terminal.
type EntryStatus string

const (
	Draft  EntryStatus = "draft"
	Posted EntryStatus = "posted"
)

// SourceType records what produced a journal entry.
type SourceType string

const (
	SourceManual   SourceType = "manual"
	SourceDonation SourceType = "donation"
	SourceReversal SourceType = "reversal"
)

// AmountScale is the number of decimal places amounts are kept to.
const AmountScale = 2

// JournalEntry is a set of debit and credit lines recorded on a date.
type JournalEntry struct {
	EntryID        string            `json:"entryID"`
	OrganizationID string            `json:"organizationID"`
	PeriodID       string            `json:"periodID"`
	EntryDate      time.Time         `json:"entryDate"`
	Description    string            `json:"description"`
	Status         EntryStatus       `json:"status"`
	SourceType     SourceType        `json:"sourceType"`
	SourceID       *string           `json:"sourceID,omitempty"`
	CreatedBy      string            `json:"createdBy"`
	CreatedAt      time.Time         `json:"createdAt"`
	PostedBy       *string           `json:"postedBy,omitempty"`
	PostedAt       *time.Time        `json:"postedAt,omitempty"`
	LineItems      []JournalLineItem `json:"lineItems"`
}

// IsPosted reports whether the entry has been posted and is now immutable.
func (e *JournalEntry) IsPosted() bool {
	return e.Status == Posted
}

// Totals returns the sums of the debit and credit sides.
func (e *JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, line := range e.LineItems {
		debits = debits.Add(line.DebitAmount)
		credits = credits.Add(line.CreditAmount)
	}
	return debits, credits
}

// JournalLineItem affects exactly one account on exactly one side.
type JournalLineItem struct {
	LineItemID   string          `json:"lineItemID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Memo         string          `json:"memo"`
}

// IsDebit reports whether the line sits on the debit side.
func (l *JournalLineItem) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Amount returns the non-zero side of the line.
func (l *JournalLineItem) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// Validate checks the single-sided rule and the amount scale.
func (l *JournalLineItem) Validate() error {
	if l.AccountID == "" {
		return fmt.Errorf("line item account ID is required")
	}
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return fmt.Errorf("line item amounts must not be negative for account %s", l.AccountID)
	}
	if l.DebitAmount.IsZero() == l.CreditAmount.IsZero() {
		return fmt.Errorf("line item for account %s must have exactly one of debit or credit", l.AccountID)
	}
	for _, amt := range []decimal.Decimal{l.DebitAmount, l.CreditAmount} {
		if !amt.Equal(amt.Truncate(AmountScale)) {
			return fmt.Errorf("line item amount %s for account %s has more than %d decimal places", amt.String(), l.AccountID, AmountScale)
		}
	}
	return nil
}
