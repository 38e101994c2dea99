package repositories

import "context"

// TransactionManager runs a unit of work inside a single database transaction.
// Repository calls made with the context passed to fn join that transaction.
type TransactionManager interface {
	// WithTx begins a transaction, runs fn and commits if fn returns nil.
	// Any error from fn rolls the transaction back and is returned unchanged.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
