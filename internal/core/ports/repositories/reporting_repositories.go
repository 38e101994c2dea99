package repositories

import (
	"context"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// ReportingRepository aggregates posted ledger data.
type ReportingRepository interface {
	// PostedTotalsByAccount sums debits and credits of posted entries in the period per account.
	PostedTotalsByAccount(ctx context.Context, organizationID, periodID string) ([]domain.AccountTotals, error)
}
