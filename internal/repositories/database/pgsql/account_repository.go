package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, organization_id, code, name, account_type, parent_account_id, fund_id, campaign_id,
	description, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func (r *PgxAccountRepository) findMany(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	acc, err := r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE organization_id = $1 AND account_id = $2`,
		organizationID, accountID)
	if err != nil {
		return nil, notFound(err, "account %s", accountID)
	}
	return acc, nil
}

// FindAccountByIDForUpdate retrieves an account and locks its row until the transaction ends.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	acc, err := r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE organization_id = $1 AND account_id = $2 FOR UPDATE`,
		organizationID, accountID)
	if err != nil {
		return nil, notFound(err, "account %s", accountID)
	}
	return acc, nil
}

func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, organizationID, code string) (*domain.Account, error) {
	acc, err := r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE organization_id = $1 AND code = $2`,
		organizationID, code)
	if err != nil {
		return nil, notFound(err, "account code %s", code)
	}
	return acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	return r.findAccountsByIDs(ctx, `SELECT `+accountColumns+` FROM accounts WHERE organization_id = $1 AND account_id = ANY($2)`,
		organizationID, accountIDs)
}

// FindAccountsByIDsForShare locks in account_id order so concurrent writers cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForShare(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	return r.findAccountsByIDs(ctx, `SELECT `+accountColumns+` FROM accounts WHERE organization_id = $1 AND account_id = ANY($2)
		ORDER BY account_id FOR SHARE`,
		organizationID, accountIDs)
}

func (r *PgxAccountRepository) findAccountsByIDs(ctx context.Context, query, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := r.findMany(ctx, query, organizationID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	result := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		result[a.AccountID] = a
	}
	return result, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, organizationID string) ([]domain.Account, error) {
	accounts, err := r.findMany(ctx, `SELECT `+accountColumns+` FROM accounts WHERE organization_id = $1 ORDER BY code`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) FindRevenueAccountByFund(ctx context.Context, organizationID, fundID string) (*domain.Account, error) {
	acc, err := r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE organization_id = $1 AND fund_id = $2 AND account_type = $3 AND is_active
		ORDER BY code LIMIT 1`, organizationID, fundID, string(domain.Revenue))
	if err != nil {
		return nil, notFound(err, "revenue account for fund %s", fundID)
	}
	return acc, nil
}

func (r *PgxAccountRepository) FindRevenueAccountByCampaign(ctx context.Context, organizationID, campaignID string) (*domain.Account, error) {
	acc, err := r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE organization_id = $1 AND campaign_id = $2 AND account_type = $3 AND is_active
		ORDER BY code LIMIT 1`, organizationID, campaignID, string(domain.Revenue))
	if err != nil {
		return nil, notFound(err, "revenue account for campaign %s", campaignID)
	}
	return acc, nil
}

const insertAccountQuery = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func insertAccountArgs(a domain.Account) []any {
	m := mapping.ToModelAccount(a)
	return []any{
		m.AccountID, m.OrganizationID, m.Code, m.Name, m.AccountType, m.ParentAccountID, m.FundID, m.CampaignID,
		m.Description, m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if _, err := r.db(ctx).Exec(ctx, insertAccountQuery, insertAccountArgs(account)...); err != nil {
		return mapPgError(err, "failed to save account %s", account.AccountID)
	}
	return nil
}

// SaveAccounts inserts several accounts in one batch.
func (r *PgxAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(insertAccountQuery, insertAccountArgs(a)...)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	var batchErr error
	for _, a := range accounts {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = mapPgError(err, "failed to save account %s", a.Code)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close account batch: %w", err)
	}
	return batchErr
}

func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, organizationID, accountID, userID string, now time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE accounts SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE organization_id = $1 AND account_id = $2`,
		organizationID, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxAccountRepository) CountDraftReferences(ctx context.Context, organizationID, accountID string) (int, error) {
	var count int
	err := r.db(ctx).QueryRow(ctx, `
		SELECT COUNT(*)
		FROM journal_line_items l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.organization_id = $1 AND l.account_id = $2 AND e.status = $3`,
		organizationID, accountID, string(domain.Draft)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count draft references for account %s: %w", accountID, err)
	}
	return count, nil
}
