package services

import "github.com/SscSPs/nonprofit_ledger/internal/core/domain"

// Codes of default accounts other components look up.
const (
	CashAccountCode                = "1000"
	ContributionRevenueAccountCode = "4000"
)

// Organization types accepted by InitializeDefaults. An empty type means general.
const (
	OrgTypeGeneral    = "general"
	OrgTypeFoundation = "foundation"
	OrgTypeReligious  = "religious"
	OrgTypeSchool     = "school"
)

type accountTemplate struct {
	code        string
	name        string
	accountType domain.AccountType
	description string
}

var defaultChart = []accountTemplate{
	{CashAccountCode, "Cash", domain.Asset, "Operating bank and cash balances"},
	{"1100", "Contributions Receivable", domain.Asset, "Pledges and gifts promised but not yet received"},
	{"2000", "Accounts Payable", domain.Liability, "Amounts owed to vendors"},
	{"3000", "Net Assets Without Donor Restrictions", domain.Equity, ""},
	{"3100", "Net Assets With Donor Restrictions", domain.Equity, ""},
	{ContributionRevenueAccountCode, "Contribution Revenue", domain.Revenue, "Unrestricted gifts and donations"},
	{"5000", "Program Expense", domain.Expense, "Costs of delivering programs"},
	{"6000", "Management & General Expense", domain.Expense, "Administrative costs"},
	{"7000", "Fundraising Expense", domain.Expense, "Costs of soliciting contributions"},
}

var orgTypeExtras = map[string][]accountTemplate{
	OrgTypeGeneral:    nil,
	OrgTypeFoundation: {{"4200", "Investment Income", domain.Revenue, "Interest, dividends and realized gains"}},
	OrgTypeReligious:  {{"4050", "Tithes & Offerings", domain.Revenue, ""}},
	OrgTypeSchool:     {{"4300", "Tuition Revenue", domain.Revenue, ""}},
}

// chartTemplateFor returns the templates for an organization type in code order.
func chartTemplateFor(orgType string) ([]accountTemplate, bool) {
	if orgType == "" {
		orgType = OrgTypeGeneral
	}
	extras, ok := orgTypeExtras[orgType]
	if !ok {
		return nil, false
	}
	templates := make([]accountTemplate, 0, len(defaultChart)+len(extras))
	for _, t := range defaultChart {
		templates = append(templates, t)
		// Keep extras adjacent to contribution revenue.
		if t.code == ContributionRevenueAccountCode {
			templates = append(templates, extras...)
		}
	}
	return templates, true
}
