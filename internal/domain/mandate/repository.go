package mandate

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines mandate persistence operations. Mandates are mutated
// only by the mandate lifecycle manager.
type Repository interface {
	Create(ctx context.Context, m *Mandate) error
	GetByExternalRef(ctx context.Context, externalRef string) (*Mandate, error)
	Update(ctx context.Context, m *Mandate) error
	WithTx(tx pgx.Tx) Repository
}

// ErrMandateNotFound indicates missing mandate
type ErrMandateNotFound struct {
	Ref string
}

func (e ErrMandateNotFound) Error() string {
	return "mandate not found: " + e.Ref
}

// Is implements the errors.Is interface for ErrMandateNotFound
func (e ErrMandateNotFound) Is(target error) bool {
	t, ok := target.(ErrMandateNotFound)
	if !ok {
		return false
	}
	if t.Ref == "" {
		return true
	}
	return e.Ref == t.Ref
}

// ErrDuplicateMandate indicates external reference uniqueness violation
type ErrDuplicateMandate struct {
	Ref string
}

func (e ErrDuplicateMandate) Error() string {
	return "mandate already exists: " + e.Ref
}

// Is implements the errors.Is interface for ErrDuplicateMandate
func (e ErrDuplicateMandate) Is(target error) bool {
	t, ok := target.(ErrDuplicateMandate)
	if !ok {
		return false
	}
	if t.Ref == "" {
		return true
	}
	return e.Ref == t.Ref
}
