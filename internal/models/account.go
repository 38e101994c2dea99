package models

// Account is a row of the accounts table.
type Account struct {
	AccountID       string  `db:"account_id"`
	OrganizationID  string  `db:"organization_id"`
	Code            string  `db:"code"`
	Name            string  `db:"name"`
	AccountType     string  `db:"account_type"`
	ParentAccountID *string `db:"parent_account_id"` // Nullable
	FundID          *string `db:"fund_id"`           // Nullable
	CampaignID      *string `db:"campaign_id"`       // Nullable
	Description     string  `db:"description"`
	IsActive        bool    `db:"is_active"`
	AuditFields
}
