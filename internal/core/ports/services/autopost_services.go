package services

import (
	"context"

	"github.com/SscSPs/nonprofit_ledger/internal/dto"
)

// AutoPosterSvc turns donation records into balanced journal entries.
type AutoPosterSvc interface {
	// PostDonationsToJournal creates one entry per donation not yet posted. Failures of
	// individual donations are collected in the result; only setup failures return an error.
	PostDonationsToJournal(ctx context.Context, organizationID, createdBy string, req dto.AutoPostRequest) (*dto.AutoPostResult, error)
}
