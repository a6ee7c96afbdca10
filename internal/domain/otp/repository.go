package otp

import (
	"context"
	"time"

	"github.com/momo-payment-gateway/internal/domain/shared"
)

// Repository persists one-time codes. FindActive matches the most recent
// unused, unexpired code for the purpose it was issued under; expired rows
// are swept periodically.
type Repository interface {
	Create(ctx context.Context, code *OneTimeCode) error
	FindActive(ctx context.Context, destination, code string, channel shared.OTPChannel, purpose shared.OTPPurpose, now time.Time) (*OneTimeCode, error)
	MarkUsed(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ErrCodeNotFound indicates no matching active code. Callers must not
// distinguish expired from wrong from already-used codes.
type ErrCodeNotFound struct{}

func (e ErrCodeNotFound) Error() string {
	return "no matching active one-time code"
}
