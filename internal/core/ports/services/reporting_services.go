package services

import (
	"context"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// ReportingService defines the interface for ledger reports
type ReportingService interface {
	// TrialBalance lists posted totals per account for the period.
	TrialBalance(ctx context.Context, organizationID, periodID string) (*domain.TrialBalance, error)
}
