package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/momo-payment-gateway/internal/domain/mandate"
	"github.com/momo-payment-gateway/internal/domain/otp"
	"github.com/momo-payment-gateway/internal/domain/settlement"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/token"
	"github.com/momo-payment-gateway/internal/domain/transaction"
	"github.com/momo-payment-gateway/internal/provider"
)

// TokenManager maintains valid upstream bearer tokens for every token type.
// Reads are lock-free; refresh ownership belongs exclusively to the
// background scheduler.
type TokenManager interface {
	// GetToken returns a currently valid token for the type.
	// Returns token.ErrTokenUnavailable when none exists; it never refreshes inline.
	GetToken(ctx context.Context, tokenType shared.TokenType) (*token.AccessToken, error)

	// RefreshAll refreshes every token type, returning the first error after
	// attempting all of them
	RefreshAll(ctx context.Context) error

	// Reset drops the in-memory token cache
	Reset()
}

// InitiationRequest carries everything needed to start a collection
type InitiationRequest struct {
	InternalRef       string // Caller-supplied idempotency key, must be a UUID
	TargetEnvironment string // Must echo the deployment environment
	Provider          shared.Provider
	MSISDN            string
	Amount            int64 // Minor units
	Currency          string
	CallbackURL       string
	InitiatedBy       string
	PartnerID         string
	PartnerName       string
	PayerMessage      string
	PayeeNote         string
}

// InitiationService starts collection transactions against the upstream gateway
type InitiationService interface {
	// Initiate starts a collection, or returns the existing transaction when
	// the idempotency key was seen before. The bool reports whether an
	// existing record was replayed.
	Initiate(ctx context.Context, req *InitiationRequest) (*transaction.Transaction, bool, error)

	// GetByInternalRef retrieves a transaction by its idempotency key
	GetByInternalRef(ctx context.Context, internalRef string) (*transaction.Transaction, error)

	// QueryUpstreamStatus asks the provider's status endpoint about the
	// transaction without mutating the stored record. Returns the stored
	// transaction alongside the upstream answer, or
	// shared.ErrNoUpstreamReference when the transaction never reached the
	// upstream gateway.
	QueryUpstreamStatus(ctx context.Context, internalRef string) (*transaction.Transaction, *provider.StatusResult, error)
}

// CallbackDelivery is one inbound webhook payload from the upstream gateway
type CallbackDelivery struct {
	ExternalRef            string `json:"referenceId"`
	Status                 string `json:"status"`
	Reason                 string `json:"reason,omitempty"`
	Amount                 string `json:"amount,omitempty"`
	Currency               string `json:"currency,omitempty"`
	FinancialTransactionID string `json:"financialTransactionId,omitempty"`
	PayerPartyIDType       string `json:"payerPartyIdType,omitempty"`
	PayerPartyID           string `json:"payerPartyId,omitempty"`
	PayerMessage           string `json:"payerMessage,omitempty"`
	PayeeNote              string `json:"payeeNote,omitempty"`
	CorrelationID          string `json:"-"`
}

// ReconciliationService applies upstream callback deliveries to stored
// transactions. Every delivery is journaled with its outcome; duplicates and
// unknown references are absorbed, never surfaced to the sender.
type ReconciliationService interface {
	Reconcile(ctx context.Context, delivery *CallbackDelivery) (string, error)
}

// MandateRegistration carries everything needed to register a recurring
// payment authorization.
type MandateRegistration struct {
	ExternalRef string
	Provider    shared.Provider
	MSISDN      string
	Currency    string
	ValidFrom   time.Time
	ValidUntil  time.Time
	Frequency   mandate.Frequency
	Message     string
}

// MandateService manages the recurring-mandate lifecycle
type MandateService interface {
	// Register persists the mandate and submits it upstream. A failed
	// registration leaves the stored mandate INACTIVE with the failure
	// message recorded.
	Register(ctx context.Context, reg *MandateRegistration) (*mandate.Mandate, error)

	// Get retrieves a mandate by its external reference
	Get(ctx context.Context, externalRef string) (*mandate.Mandate, error)

	// Refresh folds the upstream-reported state into the stored mandate
	Refresh(ctx context.Context, externalRef string) (*mandate.Mandate, error)

	// Cancel terminates the mandate upstream and locally
	Cancel(ctx context.Context, externalRef string) (*mandate.Mandate, error)
}

// OTPService issues and verifies one-time codes gating sensitive operations
type OTPService interface {
	// Issue generates a code and publishes it for delivery. The code value
	// travels on the event bus only, never in the issuing call's response.
	Issue(ctx context.Context, destination string, channel shared.OTPChannel, purpose shared.OTPPurpose) (*otp.OneTimeCode, error)

	// Verify consumes a matching active code.
	// Returns otp.ErrCodeNotFound uniformly for wrong, expired, and already-used codes.
	Verify(ctx context.Context, destination, code string, channel shared.OTPChannel, purpose shared.OTPPurpose) (*otp.OneTimeCode, error)

	// SweepExpired removes codes past their expiry, returning how many
	SweepExpired(ctx context.Context) (int64, error)
}

// SettlementService exposes the per-partner settlement aggregates
type SettlementService interface {
	GetPartnerSummary(ctx context.Context, partnerID string) (*settlement.PartnerSummary, error)
}

// WhitelistLookup answers whether a destination number is authorized for the
// initiating partner.
type WhitelistLookup interface {
	IsAuthorized(ctx context.Context, accountID, msisdn string) (bool, error)
}

// TxExecutor runs a function inside a database transaction
type TxExecutor interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
