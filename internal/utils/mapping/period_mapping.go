package mapping

import (
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
)

// ToModelPeriod converts a domain AccountingPeriod to a model AccountingPeriod
func ToModelPeriod(d domain.AccountingPeriod) models.AccountingPeriod {
	return models.AccountingPeriod{
		PeriodID:       d.PeriodID,
		OrganizationID: d.OrganizationID,
		FiscalYear:     d.FiscalYear,
		StartDate:      domain.DateOnly(d.StartDate),
		EndDate:        domain.DateOnly(d.EndDate),
		Status:         string(d.Status),
		ClosedBy:       d.ClosedBy,
		ClosedAt:       d.ClosedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a model AccountingPeriod to a domain AccountingPeriod
func ToDomainPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	return domain.AccountingPeriod{
		PeriodID:       m.PeriodID,
		OrganizationID: m.OrganizationID,
		FiscalYear:     m.FiscalYear,
		StartDate:      domain.DateOnly(m.StartDate),
		EndDate:        domain.DateOnly(m.EndDate),
		Status:         domain.PeriodStatus(m.Status),
		ClosedBy:       m.ClosedBy,
		ClosedAt:       m.ClosedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPeriodSlice converts model periods to domain periods
func ToDomainPeriodSlice(ms []models.AccountingPeriod) []domain.AccountingPeriod {
	ds := make([]domain.AccountingPeriod, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPeriod(m)
	}
	return ds
}
