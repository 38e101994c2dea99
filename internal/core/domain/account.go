package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Equity    AccountType = "equity"
	Revenue   AccountType = "revenue"
	Expense   AccountType = "expense"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether balances of this type grow with debits.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account is a node in an organization's chart of accounts. Accounts are never
// physically deleted because posted journal lines reference them forever.
type Account struct {
	AccountID       string      `json:"accountID"`
	OrganizationID  string      `json:"organizationID"`
	Code            string      `json:"code"` // Unique per organization
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	ParentAccountID *string     `json:"parentAccountID,omitempty"`
	FundID          *string     `json:"fundID,omitempty"`     // Revenue account dedicated to a fund
	CampaignID      *string     `json:"campaignID,omitempty"` // Revenue account dedicated to a campaign
	Description     string      `json:"description"`
	IsActive        bool        `json:"isActive"`
	AuditFields
}
