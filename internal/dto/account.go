package dto

import (
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=32"`
	Name            string             `json:"name" binding:"required,max=255"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,accounttype"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	FundID          *string            `json:"fundID"`          // Optional, revenue accounts only
	CampaignID      *string            `json:"campaignID"`      // Optional, revenue accounts only
	Description     string             `json:"description"`
}

// InitializeChartRequest selects which default chart of accounts to seed.
type InitializeChartRequest struct {
	OrganizationType string `json:"organizationType" binding:"omitempty,oneof=general foundation religious school"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	ParentAccountID *string            `json:"parentAccountID,omitempty"`
	FundID          *string            `json:"fundID,omitempty"`
	CampaignID      *string            `json:"campaignID,omitempty"`
	Description     string             `json:"description"`
	IsActive        bool               `json:"isActive"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ListAccountsResponse wraps the chart of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		ParentAccountID: acc.ParentAccountID,
		FundID:          acc.FundID,
		CampaignID:      acc.CampaignID,
		Description:     acc.Description,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountsResponse converts a slice of domain.Account.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	resp := ListAccountsResponse{Accounts: make([]AccountResponse, len(accounts))}
	for i := range accounts {
		resp.Accounts[i] = ToAccountResponse(&accounts[i])
	}
	return resp
}
