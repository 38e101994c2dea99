package models

import "time"

// AccountingPeriod is a row of the accounting_periods table.
type AccountingPeriod struct {
	PeriodID       string     `db:"period_id"`
	OrganizationID string     `db:"organization_id"`
	FiscalYear     int        `db:"fiscal_year"`
	StartDate      time.Time  `db:"start_date"`
	EndDate        time.Time  `db:"end_date"`
	Status         string     `db:"status"`
	ClosedBy       *string    `db:"closed_by"`
	ClosedAt       *time.Time `db:"closed_at"`
	AuditFields
}
