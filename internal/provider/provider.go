// Package provider defines the capability interfaces for pluggable payment
// network adapters and the registry that dispatches on the provider enum.
// Adding a network means registering another variant, not subclassing.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/token"
)

// ErrUnsupportedOperation indicates the provider has no implementation for
// the requested capability (e.g. mandates on a network without pre-approval).
var ErrUnsupportedOperation = errors.New("operation not supported by provider")

// ErrProviderNotConfigured indicates no adapter is registered for a provider
type ErrProviderNotConfigured struct {
	Provider shared.Provider
}

func (e ErrProviderNotConfigured) Error() string {
	return "no adapter configured for provider: " + string(e.Provider)
}

// TokenSource supplies valid bearer tokens. Implementations must never
// trigger a refresh inline; refresh ownership belongs to the scheduler.
type TokenSource interface {
	GetToken(ctx context.Context, tokenType shared.TokenType) (*token.AccessToken, error)
}

// CollectionRequest is what an adapter needs to submit a payment collection.
// ReferenceID doubles as the upstream deduplication key.
type CollectionRequest struct {
	ReferenceID  string
	MSISDN       string
	Amount       int64 // Minor units
	Currency     string
	CallbackURL  string
	PayerMessage string
	PayeeNote    string
}

// StatusResult is a provider-neutral view of an upstream transaction status
type StatusResult struct {
	Status                 string
	Reason                 string
	FinancialTransactionID string
	PayerPartyIDType       string
	PayerPartyID           string
}

// CollectionProvider is the capability every registered network must offer
type CollectionProvider interface {
	RequestToPay(ctx context.Context, req *CollectionRequest) error
	CollectionStatus(ctx context.Context, referenceID string) (*StatusResult, error)
	AccountActive(ctx context.Context, msisdn string) (bool, error)
}

// MandateRequest registers a recurring-payment authorization
type MandateRequest struct {
	ReferenceID string
	MSISDN      string
	Currency    string
	ValidFrom   time.Time
	ValidUntil  time.Time
	Frequency   string
	Message     string
}

// MandateResult is a provider-neutral view of a mandate upstream
type MandateResult struct {
	UpstreamID        string
	Status            shared.MandateStatus
	LastPaymentStatus string
	Reason            string
}

// MandateProvider is the optional pre-approval capability. Only one provider
// family supports it; the registry checks by interface assertion.
type MandateProvider interface {
	CreateMandate(ctx context.Context, req *MandateRequest) (*MandateResult, error)
	MandateStatus(ctx context.Context, upstreamID string) (*MandateResult, error)
	CancelMandate(ctx context.Context, upstreamID string) error
}

// Registry is the lookup table from provider enum to adapter
type Registry struct {
	adapters map[shared.Provider]CollectionProvider
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[shared.Provider]CollectionProvider),
	}
}

// Register binds an adapter to a provider variant
func (r *Registry) Register(p shared.Provider, adapter CollectionProvider) {
	r.adapters[p] = adapter
}

// Collection returns the collection capability for the provider
func (r *Registry) Collection(p shared.Provider) (CollectionProvider, error) {
	adapter, ok := r.adapters[p]
	if !ok {
		return nil, ErrProviderNotConfigured{Provider: p}
	}
	return adapter, nil
}

// Mandate returns the mandate capability for the provider, failing fast with
// ErrUnsupportedOperation when the adapter does not implement it.
func (r *Registry) Mandate(p shared.Provider) (MandateProvider, error) {
	adapter, ok := r.adapters[p]
	if !ok {
		return nil, ErrProviderNotConfigured{Provider: p}
	}
	mandateProvider, ok := adapter.(MandateProvider)
	if !ok {
		return nil, ErrUnsupportedOperation
	}
	return mandateProvider, nil
}
