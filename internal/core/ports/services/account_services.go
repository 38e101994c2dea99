package services

import (
	"context"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account of the organization.
	GetAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error)

	// GetChartOfAccounts retrieves every account of the organization, active and inactive.
	GetChartOfAccounts(ctx context.Context, organizationID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, organizationID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, organizationID, accountID, userID string) error

	// InitializeDefaults seeds the standard nonprofit chart unless the organization already has accounts.
	InitializeDefaults(ctx context.Context, organizationID, organizationType, userID string) ([]domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
