package domain

import "github.com/shopspring/decimal"

// AccountTotals are the summed posted debits and credits for one account.
type AccountTotals struct {
	AccountID string
	Debits    decimal.Decimal
	Credits   decimal.Decimal
}

// TrialBalanceLine is one row of a trial balance.
type TrialBalanceLine struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Debits      decimal.Decimal `json:"debits"`
	Credits     decimal.Decimal `json:"credits"`
	Balance     decimal.Decimal `json:"balance"` // Signed by the account's normal side
}

// TrialBalance lists posted totals per account for one period.
type TrialBalance struct {
	OrganizationID string             `json:"organizationID"`
	PeriodID       string             `json:"periodID"`
	Lines          []TrialBalanceLine `json:"lines"`
	TotalDebits    decimal.Decimal    `json:"totalDebits"`
	TotalCredits   decimal.Decimal    `json:"totalCredits"`
}
