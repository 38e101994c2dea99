package services

import (
	"context"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetEntry retrieves an entry with its line items.
	GetEntry(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries and the token for the next page.
	ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// JournalWriterSvc defines the journal entry state machine
type JournalWriterSvc interface {
	// CreateEntry validates and persists a draft entry with its line items atomically.
	CreateEntry(ctx context.Context, organizationID string, req dto.CreateEntryRequest, createdBy string) (*domain.JournalEntry, error)

	// PostEntry re-validates a draft and makes it immutable.
	PostEntry(ctx context.Context, organizationID, entryID, postedBy string) (*domain.JournalEntry, error)

	// DeleteEntry removes a draft entry.
	DeleteEntry(ctx context.Context, organizationID, entryID string) error
}

// JournalEditorSvc defines editing operations on draft entries
type JournalEditorSvc interface {
	AddLineItem(ctx context.Context, organizationID, entryID string, req dto.CreateLineItemRequest) (*domain.JournalEntry, error)
	RemoveLineItem(ctx context.Context, organizationID, entryID, lineItemID string) (*domain.JournalEntry, error)

	// ReverseEntry creates a draft that offsets a posted entry line by line.
	// A nil entryDate dates the reversal today.
	ReverseEntry(ctx context.Context, organizationID, entryID string, entryDate *time.Time, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalEditorSvc
}
