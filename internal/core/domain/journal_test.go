package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalLineItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		line    domain.JournalLineItem
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid debit line",
			line:    domain.JournalLineItem{AccountID: "acc_1", DebitAmount: decimal.RequireFromString("100.00")},
			wantErr: false,
		},
		{
			name:    "valid credit line",
			line:    domain.JournalLineItem{AccountID: "acc_1", CreditAmount: decimal.RequireFromString("0.01")},
			wantErr: false,
		},
		{
			name:    "both sides set",
			line:    domain.JournalLineItem{AccountID: "acc_1", DebitAmount: decimal.NewFromInt(1), CreditAmount: decimal.NewFromInt(1)},
			wantErr: true,
			errMsg:  "exactly one of debit or credit",
		},
		{
			name:    "neither side set",
			line:    domain.JournalLineItem{AccountID: "acc_1"},
			wantErr: true,
			errMsg:  "exactly one of debit or credit",
		},
		{
			name:    "negative amount",
			line:    domain.JournalLineItem{AccountID: "acc_1", DebitAmount: decimal.NewFromInt(-5)},
			wantErr: true,
			errMsg:  "must not be negative",
		},
		{
			name:    "sub-cent amount",
			line:    domain.JournalLineItem{AccountID: "acc_1", CreditAmount: decimal.RequireFromString("10.005")},
			wantErr: true,
			errMsg:  "decimal places",
		},
		{
			name:    "missing account",
			line:    domain.JournalLineItem{DebitAmount: decimal.NewFromInt(5)},
			wantErr: true,
			errMsg:  "account ID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJournalEntry_Totals(t *testing.T) {
	entry := domain.JournalEntry{
		LineItems: []domain.JournalLineItem{
			{AccountID: "cash", DebitAmount: decimal.RequireFromString("60.10")},
			{AccountID: "cash", DebitAmount: decimal.RequireFromString("39.90")},
			{AccountID: "rev", CreditAmount: decimal.RequireFromString("100.00")},
		},
	}

	debits, credits := entry.Totals()
	assert.True(t, debits.Equal(decimal.NewFromInt(100)))
	assert.True(t, credits.Equal(decimal.NewFromInt(100)))
}

func TestAccountingPeriod_ContainsAndOverlaps(t *testing.T) {
	period := domain.AccountingPeriod{
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, period.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)), "end date is inclusive")
	assert.False(t, period.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))

	assert.True(t, period.Overlaps(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))
	assert.False(t, period.Overlaps(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.Overlaps(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAccountType_IsValid(t *testing.T) {
	assert.True(t, domain.Revenue.IsValid())
	assert.False(t, domain.AccountType("income").IsValid())
	assert.True(t, domain.Expense.IsDebitNormal())
	assert.False(t, domain.Liability.IsDebitNormal())
}
