package domain

import "time"

// PeriodStatus is the lifecycle state of an accounting period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "open"
	PeriodClosed PeriodStatus = "closed"
)

// AccountingPeriod is an inclusive date range that must be open to accept postings.
type AccountingPeriod struct {
	PeriodID       string       `json:"periodID"`
	OrganizationID string       `json:"organizationID"`
	FiscalYear     int          `json:"fiscalYear"`
	StartDate      time.Time    `json:"startDate"`
	EndDate        time.Time    `json:"endDate"`
	Status         PeriodStatus `json:"status"`
	ClosedBy       *string      `json:"closedBy,omitempty"`
	ClosedAt       *time.Time   `json:"closedAt,omitempty"`
	AuditFields
}

// IsOpen reports whether the period still accepts postings.
func (p *AccountingPeriod) IsOpen() bool {
	return p.Status == PeriodOpen
}

// Contains reports whether the calendar date of t falls inside the period.
func (p *AccountingPeriod) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(p.StartDate)) && !d.After(DateOnly(p.EndDate))
}

// Overlaps reports whether [start, end] intersects the period.
func (p *AccountingPeriod) Overlaps(start, end time.Time) bool {
	return !DateOnly(start).After(DateOnly(p.EndDate)) && !DateOnly(end).Before(DateOnly(p.StartDate))
}
