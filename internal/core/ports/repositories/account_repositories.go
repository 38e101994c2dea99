package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account of the organization by its ID.
	FindAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account of the organization by its code.
	FindAccountByCode(ctx context.Context, organizationID, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts of the organization. Missing IDs are absent from the map.
	FindAccountsByIDs(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the whole chart of accounts, active and inactive, ordered by code.
	ListAccounts(ctx context.Context, organizationID string) ([]domain.Account, error)

	// FindRevenueAccountByFund retrieves the active revenue account tagged with the fund.
	FindRevenueAccountByFund(ctx context.Context, organizationID, fundID string) (*domain.Account, error)

	// FindRevenueAccountByCampaign retrieves the active revenue account tagged with the campaign.
	FindRevenueAccountByCampaign(ctx context.Context, organizationID, campaignID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveAccounts persists several new accounts in one round trip.
	SaveAccounts(ctx context.Context, accounts []domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, organizationID, accountID, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations meant to run inside TransactionManager.WithTx
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate retrieves an account and locks its row.
	FindAccountByIDForUpdate(ctx context.Context, organizationID, accountID string) (*domain.Account, error)

	// FindAccountsByIDsForShare is FindAccountsByIDs with the rows share-locked, so an
	// account cannot be deactivated while a draft referencing it is being written.
	FindAccountsByIDsForShare(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error)

	// CountDraftReferences counts line items of draft entries that reference the account.
	CountDraftReferences(ctx context.Context, organizationID, accountID string) (int, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
