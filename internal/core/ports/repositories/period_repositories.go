package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// PeriodReader defines read operations for accounting periods
type PeriodReader interface {
	// FindPeriodByID retrieves a period of the organization.
	FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodForDate retrieves the period covering the date, share-locking its row
	// when called inside a transaction. Returns apperrors.ErrNotFound when none covers it.
	FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.AccountingPeriod, error)

	// FindOverlappingPeriods retrieves every period intersecting [start, end].
	FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time) ([]domain.AccountingPeriod, error)

	// ListPeriods retrieves all periods of the organization ordered by start date.
	ListPeriods(ctx context.Context, organizationID string) ([]domain.AccountingPeriod, error)
}

// PeriodWriter defines write operations for accounting periods
type PeriodWriter interface {
	// SavePeriod persists a new period.
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	// MarkPeriodClosed flips an open period to closed and stamps who closed it.
	MarkPeriodClosed(ctx context.Context, organizationID, periodID, closedBy string, closedAt time.Time) error
}

// PeriodTransactionSupport defines operations meant to run inside TransactionManager.WithTx
type PeriodTransactionSupport interface {
	// FindPeriodByIDForUpdate retrieves a period and locks its row exclusively.
	FindPeriodByIDForUpdate(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodByIDForShare retrieves a period and share-locks its row so it cannot close concurrently.
	FindPeriodByIDForShare(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error)
}

// PeriodRepositoryFacade combines all period-related repository interfaces
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
	PeriodTransactionSupport
}
