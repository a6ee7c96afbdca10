package transaction

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines transaction persistence operations. Transactions are
// owned exclusively by this core: rows are created by the initiator and
// mutated only by the initiator's terminal write and the callback reconciler.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByInternalRef(ctx context.Context, internalRef string) (*Transaction, error)
	GetByExternalRef(ctx context.Context, externalRef string) (*Transaction, error)
	Update(ctx context.Context, txn *Transaction) error

	// LockByInternalRef acquires a row lock for an atomic read-modify-write
	LockByInternalRef(ctx context.Context, internalRef string) (*Transaction, error)
	// LockByExternalRef acquires a row lock keyed by the upstream reference
	LockByExternalRef(ctx context.Context, externalRef string) (*Transaction, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing transaction
type ErrTransactionNotFound struct {
	Ref string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.Ref
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.Ref == "" {
		return true
	}
	return e.Ref == t.Ref
}

// ErrDuplicateInternalRef indicates an idempotency-key reuse: a transaction
// keyed by the same internal reference already exists.
type ErrDuplicateInternalRef struct {
	Ref string
}

func (e ErrDuplicateInternalRef) Error() string {
	return "transaction already exists for idempotency key: " + e.Ref
}

// Is implements the errors.Is interface for ErrDuplicateInternalRef
func (e ErrDuplicateInternalRef) Is(target error) bool {
	t, ok := target.(ErrDuplicateInternalRef)
	if !ok {
		return false
	}
	if t.Ref == "" {
		return true
	}
	return e.Ref == t.Ref
}
