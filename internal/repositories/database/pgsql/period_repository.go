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

const periodColumns = `period_id, organization_id, fiscal_year, start_date, end_date, status, closed_by, closed_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) *PgxPeriodRepository {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func (r *PgxPeriodRepository) findOne(ctx context.Context, query string, args ...any) (*domain.AccountingPeriod, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.AccountingPeriod])
	if err != nil {
		return nil, err
	}
	p := mapping.ToDomainPeriod(m)
	return &p, nil
}

func (r *PgxPeriodRepository) findMany(ctx context.Context, query string, args ...any) ([]domain.AccountingPeriod, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.AccountingPeriod])
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainPeriodSlice(ms), nil
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	p, err := r.findOne(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE organization_id = $1 AND period_id = $2`,
		organizationID, periodID)
	if err != nil {
		return nil, notFound(err, "period %s", periodID)
	}
	return p, nil
}

func (r *PgxPeriodRepository) FindPeriodByIDForUpdate(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	p, err := r.findOne(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE organization_id = $1 AND period_id = $2 FOR UPDATE`,
		organizationID, periodID)
	if err != nil {
		return nil, notFound(err, "period %s", periodID)
	}
	return p, nil
}

func (r *PgxPeriodRepository) FindPeriodByIDForShare(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	p, err := r.findOne(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE organization_id = $1 AND period_id = $2 FOR SHARE`,
		organizationID, periodID)
	if err != nil {
		return nil, notFound(err, "period %s", periodID)
	}
	return p, nil
}

// FindPeriodForDate share-locks the covering period so ClosePeriod waits for in-flight postings.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.AccountingPeriod, error) {
	p, err := r.findOne(ctx, `SELECT `+periodColumns+` FROM accounting_periods
		WHERE organization_id = $1 AND start_date <= $2 AND end_date >= $2
		FOR SHARE`, organizationID, domain.DateOnly(date))
	if err != nil {
		return nil, notFound(err, "period covering %s", date.Format(time.DateOnly))
	}
	return p, nil
}

func (r *PgxPeriodRepository) FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time) ([]domain.AccountingPeriod, error) {
	periods, err := r.findMany(ctx, `SELECT `+periodColumns+` FROM accounting_periods
		WHERE organization_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date`, organizationID, domain.DateOnly(start), domain.DateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping periods: %w", err)
	}
	return periods, nil
}

func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, organizationID string) ([]domain.AccountingPeriod, error) {
	periods, err := r.findMany(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE organization_id = $1 ORDER BY start_date`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelPeriod(period)
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO accounting_periods (`+periodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.PeriodID, m.OrganizationID, m.FiscalYear, m.StartDate, m.EndDate, m.Status, m.ClosedBy, m.ClosedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapPgError(err, "failed to save period %s", m.PeriodID)
	}
	return nil
}

func (r *PgxPeriodRepository) MarkPeriodClosed(ctx context.Context, organizationID, periodID, closedBy string, closedAt time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE accounting_periods
		SET status = $3, closed_by = $4, closed_at = $5, last_updated_at = $5, last_updated_by = $4
		WHERE organization_id = $1 AND period_id = $2 AND status = $6`,
		organizationID, periodID, string(domain.PeriodClosed), closedBy, closedAt, string(domain.PeriodOpen))
	if err != nil {
		return fmt.Errorf("failed to close period %s: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindPeriodByID(ctx, organizationID, periodID); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyClosed, periodID)
	}
	return nil
}
