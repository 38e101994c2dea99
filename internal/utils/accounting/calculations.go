package accounting

import (
	"fmt"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MinLineItems is the smallest number of lines a journal entry may carry.
const MinLineItems = 2

// SignedBalance returns the balance of an account from its debit and credit totals,
// positive on the account type's normal side.
// DEBIT-normal (asset, expense): debits - credits
// CREDIT-normal (liability, equity, revenue): credits - debits
func SignedBalance(accountType domain.AccountType, debits, credits decimal.Decimal) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
	if accountType.IsDebitNormal() {
		return debits.Sub(credits), nil
	}
	return credits.Sub(debits), nil
}

// ValidateLineItems checks every line on its own. It does not check the balance.
func ValidateLineItems(lines []domain.JournalLineItem) error {
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}
	return nil
}

// ValidateBalance checks that debits equal credits exactly. There is no tolerance.
// On failure the returned error is an *apperrors.UnbalancedEntryError.
func ValidateBalance(lines []domain.JournalLineItem) error {
	entry := domain.JournalEntry{LineItems: lines}
	debits, credits := entry.Totals()
	if !debits.Equal(credits) {
		return &apperrors.UnbalancedEntryError{Debits: debits, Credits: credits}
	}
	return nil
}

// ValidateJournalEntry runs the full structural check used before create and post:
// minimum line count, per-line rules and the balance invariant.
func ValidateJournalEntry(lines []domain.JournalLineItem) error {
	if len(lines) < MinLineItems {
		return fmt.Errorf("%w: journal entry must have at least %d line items", apperrors.ErrValidation, MinLineItems)
	}
	if err := ValidateLineItems(lines); err != nil {
		return err
	}
	return ValidateBalance(lines)
}

// ReverseLines swaps the debit and credit side of every line. IDs are cleared.
func ReverseLines(lines []domain.JournalLineItem) []domain.JournalLineItem {
	reversed := make([]domain.JournalLineItem, len(lines))
	for i, l := range lines {
		reversed[i] = domain.JournalLineItem{
			AccountID:    l.AccountID,
			DebitAmount:  l.CreditAmount,
			CreditAmount: l.DebitAmount,
			Memo:         l.Memo,
		}
	}
	return reversed
}
