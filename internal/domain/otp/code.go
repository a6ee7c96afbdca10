package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/momo-payment-gateway/internal/domain/shared"
)

// DefaultTTL is how long an issued code stays verifiable
const DefaultTTL = 5 * time.Minute

// codeSpace bounds the 6-digit numeric code range
const codeSpace = 1000000

var ErrEmptyDestination = errors.New("code destination cannot be empty")

// OneTimeCode gates a sensitive operation. It is consumable at most once and
// only before expiry.
type OneTimeCode struct {
	ID          int64             `json:"id"`
	Code        string            `json:"-"` // Never serialized
	Destination string            `json:"destination"`
	Channel     shared.OTPChannel `json:"channel"`
	Purpose     shared.OTPPurpose `json:"purpose"`
	Used        bool              `json:"used"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// New issues a fresh 6-digit code from a cryptographically strong source
func New(destination string, channel shared.OTPChannel, purpose shared.OTPPurpose, ttl time.Duration) (*OneTimeCode, error) {
	if destination == "" {
		return nil, ErrEmptyDestination
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return nil, fmt.Errorf("failed to generate one-time code: %w", err)
	}

	now := time.Now()
	return &OneTimeCode{
		Code:        fmt.Sprintf("%06d", n.Int64()),
		Destination: destination,
		Channel:     channel,
		Purpose:     purpose,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}, nil
}

// Expired reports whether the code is past its expiry at the given instant
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
