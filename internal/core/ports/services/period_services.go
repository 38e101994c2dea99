package services

import (
	"context"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
)

// PeriodReaderSvc defines read operations for accounting periods
type PeriodReaderSvc interface {
	GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, organizationID string) ([]domain.AccountingPeriod, error)

	// FindPeriodForDate resolves the period covering date. Fails with apperrors.ErrNoOpenPeriod when none does.
	FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.AccountingPeriod, error)
}

// PeriodWriterSvc defines write operations for accounting periods
type PeriodWriterSvc interface {
	CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, userID string) (*domain.AccountingPeriod, error)

	// ClosePeriod locks the period against further postings.
	ClosePeriod(ctx context.Context, organizationID, periodID, closedBy string) (*domain.AccountingPeriod, error)
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
