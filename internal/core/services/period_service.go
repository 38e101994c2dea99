package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/google/uuid"
)

type periodService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	periodRepo  portsrepo.PeriodRepositoryFacade
	journalRepo portsrepo.JournalReader
}

// NewPeriodService creates a new period service. The journal reader is used to
// refuse closing a period that still holds drafts.
func NewPeriodService(txManager portsrepo.TransactionManager, periodRepo portsrepo.PeriodRepositoryFacade, journalRepo portsrepo.JournalReader, options ...ServiceOption) portssvc.PeriodSvcFacade {
	return &periodService{
		BaseService: newBaseService(options),
		txManager:   txManager,
		periodRepo:  periodRepo,
		journalRepo: journalRepo,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, userID string) (*domain.AccountingPeriod, error) {
	start := domain.DateOnly(req.StartDate)
	end := domain.DateOnly(req.EndDate)
	if req.FiscalYear <= 0 {
		return nil, fmt.Errorf("%w: fiscal year must be positive", apperrors.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period end date %s is before start date %s", apperrors.ErrValidation,
			end.Format(dto.DateLayout), start.Format(dto.DateLayout))
	}

	now := s.Now()
	period := domain.AccountingPeriod{
		PeriodID:       uuid.NewString(),
		OrganizationID: organizationID,
		FiscalYear:     req.FiscalYear,
		StartDate:      start,
		EndDate:        end,
		Status:         domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		overlapping, err := s.periodRepo.FindOverlappingPeriods(ctx, organizationID, start, end)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			o := overlapping[0]
			return fmt.Errorf("%w: %s to %s", apperrors.ErrOverlappingPeriod,
				o.StartDate.Format(dto.DateLayout), o.EndDate.Format(dto.DateLayout))
		}
		return s.periodRepo.SavePeriod(ctx, period)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create accounting period",
			slog.String("organization_id", organizationID),
			slog.Int("fiscal_year", req.FiscalYear))
		return nil, err
	}

	s.LogInfo(ctx, "Accounting period created",
		slog.String("period_id", period.PeriodID),
		slog.String("start", start.Format(dto.DateLayout)),
		slog.String("end", end.Format(dto.DateLayout)))
	return &period, nil
}

func (s *periodService) GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find period", slog.String("period_id", periodID))
		}
		return nil, err
	}
	return period, nil
}

func (s *periodService) ListPeriods(ctx context.Context, organizationID string) ([]domain.AccountingPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, organizationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods", slog.String("organization_id", organizationID))
		return nil, err
	}
	if periods == nil {
		periods = []domain.AccountingPeriod{}
	}
	return periods, nil
}

func (s *periodService) FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, organizationID, domain.DateOnly(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNoOpenPeriod, date.Format(dto.DateLayout))
		}
		s.LogError(ctx, err, "Failed to resolve period for date", slog.Time("date", date))
		return nil, err
	}
	return period, nil
}

func (s *periodService) ClosePeriod(ctx context.Context, organizationID, periodID, closedBy string) (*domain.AccountingPeriod, error) {
	var period *domain.AccountingPeriod
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		period, err = s.periodRepo.FindPeriodByIDForUpdate(ctx, organizationID, periodID)
		if err != nil {
			return err
		}
		if !period.IsOpen() {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyClosed, periodID)
		}

		drafts, err := s.journalRepo.CountDraftsInPeriod(ctx, organizationID, periodID)
		if err != nil {
			return err
		}
		if drafts > 0 {
			return fmt.Errorf("%w: %d draft entries must be posted or deleted first", apperrors.ErrDraftsExist, drafts)
		}

		now := s.Now()
		if err := s.periodRepo.MarkPeriodClosed(ctx, organizationID, periodID, closedBy, now); err != nil {
			return err
		}
		period.Status = domain.PeriodClosed
		period.ClosedBy = &closedBy
		period.ClosedAt = &now
		period.LastUpdatedAt = now
		period.LastUpdatedBy = closedBy
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to close period", slog.String("period_id", periodID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Accounting period closed", slog.String("period_id", periodID))
	return period, nil
}
