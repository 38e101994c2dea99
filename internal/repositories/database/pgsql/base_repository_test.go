package pgsql

import (
	"errors"
	"testing"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "duplicate account code", err: &pgconn.PgError{Code: "23505", ConstraintName: constraintAccountCode}, want: apperrors.ErrDuplicateCode},
		{name: "duplicate source", err: &pgconn.PgError{Code: "23505", ConstraintName: constraintEntrySource}, want: apperrors.ErrDuplicateSource},
		{name: "other unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "webhook_events_pkey"}, want: apperrors.ErrDuplicate},
		{name: "period overlap", err: &pgconn.PgError{Code: "23P01", ConstraintName: constraintPeriodOverlap}, want: apperrors.ErrOverlappingPeriod},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: apperrors.ErrValidation},
		{name: "posted entry trigger", err: &pgconn.PgError{Code: sqlStatePostedEntry, Message: "journal entry e1 is posted"}, want: apperrors.ErrCannotModifyPosted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapPgError(tt.err, "save %s", "x"), tt.want)
		})
	}

	boom := errors.New("connection reset")
	err := mapPgError(boom, "failed to save account %s", "acc_1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "failed to save account acc_1: connection reset", err.Error())
}

func TestNotFound(t *testing.T) {
	err := notFound(pgx.ErrNoRows, "account %s", "acc_1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "account acc_1")

	boom := errors.New("boom")
	assert.ErrorIs(t, notFound(boom, "account %s", "acc_1"), boom)
	assert.NotErrorIs(t, notFound(boom, "account %s", "acc_1"), apperrors.ErrNotFound)
}
