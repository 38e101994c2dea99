package dto

import (
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to open a new accounting period.
type CreatePeriodRequest struct {
	FiscalYear int       `json:"fiscalYear" binding:"required,gt=0"`
	StartDate  time.Time `json:"startDate" binding:"required"`
	EndDate    time.Time `json:"endDate" binding:"required"`
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID   string              `json:"periodID"`
	FiscalYear int                 `json:"fiscalYear"`
	StartDate  string              `json:"startDate"`
	EndDate    string              `json:"endDate"`
	Status     domain.PeriodStatus `json:"status"`
	ClosedBy   *string             `json:"closedBy,omitempty"`
	ClosedAt   *time.Time          `json:"closedAt,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	CreatedBy  string              `json:"createdBy"`
}

// ListPeriodsResponse wraps a list of periods.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}

// DateLayout is the calendar date format used in responses and query parameters.
const DateLayout = "2006-01-02"

// ToPeriodResponse converts a domain.AccountingPeriod to PeriodResponse DTO.
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:   p.PeriodID,
		FiscalYear: p.FiscalYear,
		StartDate:  p.StartDate.Format(DateLayout),
		EndDate:    p.EndDate.Format(DateLayout),
		Status:     p.Status,
		ClosedBy:   p.ClosedBy,
		ClosedAt:   p.ClosedAt,
		CreatedAt:  p.CreatedAt,
		CreatedBy:  p.CreatedBy,
	}
}

// ToListPeriodsResponse converts a slice of periods.
func ToListPeriodsResponse(periods []domain.AccountingPeriod) ListPeriodsResponse {
	resp := ListPeriodsResponse{Periods: make([]PeriodResponse, len(periods))}
	for i := range periods {
		resp.Periods[i] = ToPeriodResponse(&periods[i])
	}
	return resp
}
