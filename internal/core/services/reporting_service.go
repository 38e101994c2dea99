package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
	periodRepo    portsrepo.PeriodReader
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, accountRepo portsrepo.AccountReader, periodRepo portsrepo.PeriodReader, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService:   newBaseService(options),
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
		periodRepo:    periodRepo,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) TrialBalance(ctx context.Context, organizationID, periodID string) (*domain.TrialBalance, error) {
	if _, err := s.periodRepo.FindPeriodByID(ctx, organizationID, periodID); err != nil {
		return nil, err
	}

	totals, err := s.reportingRepo.PostedTotalsByAccount(ctx, organizationID, periodID)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate posted totals", slog.String("period_id", periodID))
		return nil, err
	}

	ids := make([]string, len(totals))
	for i, t := range totals {
		ids[i] = t.AccountID
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, organizationID, ids)
	if err != nil {
		return nil, err
	}

	tb := &domain.TrialBalance{
		OrganizationID: organizationID,
		PeriodID:       periodID,
		Lines:          make([]domain.TrialBalanceLine, 0, len(totals)),
		TotalDebits:    decimal.Zero,
		TotalCredits:   decimal.Zero,
	}
	for _, t := range totals {
		acc := accounts[t.AccountID]
		balance, err := accounting.SignedBalance(acc.AccountType, t.Debits, t.Credits)
		if err != nil {
			return nil, err
		}
		tb.Lines = append(tb.Lines, domain.TrialBalanceLine{
			AccountID:   t.AccountID,
			Code:        acc.Code,
			Name:        acc.Name,
			AccountType: acc.AccountType,
			Debits:      t.Debits,
			Credits:     t.Credits,
			Balance:     balance,
		})
		tb.TotalDebits = tb.TotalDebits.Add(t.Debits)
		tb.TotalCredits = tb.TotalCredits.Add(t.Credits)
	}
	sort.Slice(tb.Lines, func(i, j int) bool { return tb.Lines[i].Code < tb.Lines[j].Code })

	return tb, nil
}
