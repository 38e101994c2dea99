package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("state conflict")

// ErrInternal indicates an unexpected failure in a lower layer.
var ErrInternal = errors.New("internal error")

// Ledger specific errors. Each wraps one of the kinds above so callers can
// branch on either the kind or the exact condition.
var (
	ErrDuplicateCode      = fmt.Errorf("%w: account code already exists", ErrDuplicate)
	ErrUnknownAccount     = fmt.Errorf("%w: unknown or inactive account", ErrValidation)
	ErrAccountInUse       = fmt.Errorf("%w: account is referenced by a draft entry", ErrConflict)
	ErrOverlappingPeriod  = fmt.Errorf("%w: period overlaps an existing period", ErrValidation)
	ErrNoOpenPeriod       = fmt.Errorf("%w: no accounting period covers the date", ErrValidation)
	ErrPeriodClosed       = fmt.Errorf("%w: accounting period is closed", ErrConflict)
	ErrAlreadyClosed      = fmt.Errorf("%w: accounting period is already closed", ErrConflict)
	ErrDraftsExist        = fmt.Errorf("%w: draft entries remain in the period", ErrConflict)
	ErrUnbalancedEntry    = fmt.Errorf("%w: debits do not equal credits", ErrValidation)
	ErrAlreadyPosted      = fmt.Errorf("%w: journal entry is already posted", ErrConflict)
	ErrCannotDeletePosted = fmt.Errorf("%w: posted journal entries cannot be deleted", ErrConflict)
	ErrCannotModifyPosted = fmt.Errorf("%w: posted journal entries cannot be modified", ErrConflict)
	ErrDuplicateSource    = fmt.Errorf("%w: a journal entry already exists for this source", ErrConflict)
	ErrEventNotClaimed    = fmt.Errorf("%w: webhook event is not held by this delivery", ErrConflict)
)

// UnbalancedEntryError carries the computed totals of an entry that failed the
// balance check.
type UnbalancedEntryError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Delta is debits minus credits.
func (e *UnbalancedEntryError) Delta() decimal.Decimal {
	return e.Debits.Sub(e.Credits)
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("%s: debits %s, credits %s, delta %s",
		ErrUnbalancedEntry.Error(), e.Debits.StringFixed(2), e.Credits.StringFixed(2), e.Delta().StringFixed(2))
}

func (e *UnbalancedEntryError) Unwrap() error {
	return ErrUnbalancedEntry
}

// AppError is an error raised by infrastructure code that already knows which
// HTTP status it maps to.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError builds an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error to the status code route handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
