package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names from the migrations that map to ledger errors.
const (
	constraintAccountCode   = "accounts_organization_code_key"
	constraintEntrySource   = "journal_entries_source_key"
	constraintPeriodOverlap = "accounting_periods_no_overlap"

	// Raised by the journal immutability triggers.
	sqlStatePostedEntry = "LG001"
)

type txCtxKey struct{}

// querier is implemented by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// db returns the transaction stored in ctx by WithTx, or the pool.
func (r *BaseRepository) db(ctx context.Context) querier {
	if tx, ok := ctx.Value(txCtxKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to rollback transaction", err)
	}
	return nil
}

// PgxTransactionManager implements portsrepo.TransactionManager on a pgx pool.
type PgxTransactionManager struct {
	BaseRepository
}

func newPgxTransactionManager(pool *pgxpool.Pool) *PgxTransactionManager {
	return &PgxTransactionManager{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// WithTx runs fn in a transaction. Calls nested inside fn join the outer transaction.
func (m *PgxTransactionManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer m.Rollback(ctx, tx) // No-op once committed

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}

// mapPgError translates constraint violations into ledger errors and wraps anything else.
func mapPgError(err error, format string, args ...any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case constraintAccountCode:
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, pgErr.Detail)
			case constraintEntrySource:
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateSource, pgErr.Detail)
			}
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, pgErr.Detail)
		case "23P01": // exclusion_violation
			if pgErr.ConstraintName == constraintPeriodOverlap {
				return apperrors.ErrOverlappingPeriod
			}
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, pgErr.Detail)
		case sqlStatePostedEntry:
			return fmt.Errorf("%w: %s", apperrors.ErrCannotModifyPosted, pgErr.Message)
		}
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// notFound maps pgx.ErrNoRows to apperrors.ErrNotFound.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf(format+": %w", append(args, apperrors.ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
