package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	BaseRepository
}

func newReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// PostedTotalsByAccount sums posted line items per account; drafts never count toward balances.
func (r *PgxReportingRepository) PostedTotalsByAccount(ctx context.Context, organizationID, periodID string) ([]domain.AccountTotals, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT l.account_id, SUM(l.debit_amount) AS debits, SUM(l.credit_amount) AS credits
		FROM journal_line_items l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.organization_id = $1 AND e.period_id = $2 AND e.status = $3
		GROUP BY l.account_id
		ORDER BY l.account_id`,
		organizationID, periodID, string(domain.Posted))
	if err != nil {
		return nil, fmt.Errorf("failed to query posted totals: %w", err)
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountTotals, error) {
		var t domain.AccountTotals
		err := row.Scan(&t.AccountID, &t.Debits, &t.Credits)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan posted totals: %w", err)
	}
	return totals, nil
}
