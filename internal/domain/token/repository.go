package token

import (
	"context"
	"time"

	"github.com/momo-payment-gateway/internal/domain/shared"
)

// Repository persists the append-only access-token history. Reads filter on
// validity; expired rows are retained for audit.
type Repository interface {
	Append(ctx context.Context, tok *AccessToken) error
	LatestValid(ctx context.Context, tokenType shared.TokenType, now time.Time) (*AccessToken, error)
}
