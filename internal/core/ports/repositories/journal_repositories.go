package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// ListEntriesParams filters and pages journal entry listings.
type ListEntriesParams struct {
	PeriodID  *string
	Status    *domain.EntryStatus
	Limit     int
	NextToken *string
}

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves an entry of the organization together with its line items.
	FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySource retrieves the entry produced by a source document, if any.
	FindEntryBySource(ctx context.Context, organizationID string, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries with their line items, newest entry date first.
	// It returns the entries and a token for the next page.
	ListEntries(ctx context.Context, organizationID string, params ListEntriesParams) ([]domain.JournalEntry, *string, error)

	// CountDraftsInPeriod counts draft entries assigned to the period.
	CountDraftsInPeriod(ctx context.Context, organizationID, periodID string) (int, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveEntry persists an entry and all of its line items atomically.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkEntryPosted flips a draft entry to posted.
	MarkEntryPosted(ctx context.Context, organizationID, entryID, postedBy string, postedAt time.Time) error

	// DeleteEntry removes a draft entry and its line items.
	DeleteEntry(ctx context.Context, organizationID, entryID string) error

	// SaveLineItem appends a line item to a draft entry.
	SaveLineItem(ctx context.Context, organizationID string, line domain.JournalLineItem) error

	// DeleteLineItem removes a line item from a draft entry.
	DeleteLineItem(ctx context.Context, organizationID, entryID, lineItemID string) error
}

// JournalTransactionSupport defines operations meant to run inside TransactionManager.WithTx
type JournalTransactionSupport interface {
	// FindEntryByIDForUpdate retrieves an entry with its line items and locks the entry row.
	FindEntryByIDForUpdate(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	JournalTransactionSupport
}
