package token

import (
	"time"

	"github.com/momo-payment-gateway/internal/domain/shared"
)

// AccessToken is one row of the append-only bearer-token history. A refresh
// always inserts a new row; rows are never mutated or deleted.
type AccessToken struct {
	ID        int64            `json:"id"`
	Type      shared.TokenType `json:"type"`
	Value     string           `json:"-"` // Never serialized
	IssuedAt  time.Time        `json:"issued_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Valid reports whether the token is usable at the given instant
func (t *AccessToken) Valid(now time.Time) bool {
	return t != nil && now.Before(t.ExpiresAt)
}

// ErrTokenUnavailable indicates no valid token of the given type exists.
// This is a hard failure for the caller: refresh ownership belongs to the
// scheduler and is never triggered inline.
type ErrTokenUnavailable struct {
	Type shared.TokenType
}

func (e ErrTokenUnavailable) Error() string {
	return "no valid access token available for type: " + string(e.Type)
}

// Is implements the errors.Is interface for ErrTokenUnavailable
func (e ErrTokenUnavailable) Is(target error) bool {
	t, ok := target.(ErrTokenUnavailable)
	if !ok {
		return false
	}
	if t.Type == "" {
		return true
	}
	return e.Type == t.Type
}
