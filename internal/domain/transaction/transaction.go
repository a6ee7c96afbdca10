package transaction

import (
	"errors"
	"time"

	"github.com/momo-payment-gateway/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyDestination  = errors.New("destination number cannot be empty")
	ErrEmptyPartner      = errors.New("initiating partner cannot be empty")
	ErrInvalidTransition = errors.New("invalid transaction status transition")
)

// Transaction represents a collection payment exchanged with the upstream
// mobile-money gateway. InternalRef is the caller-supplied idempotency key
// and is assigned exactly once; ExternalRef is assigned by upstream.
type Transaction struct {
	InternalRef            string                   `json:"internal_ref"`
	ExternalRef            string                   `json:"external_ref,omitempty"`
	CollectionRef          string                   `json:"collection_ref,omitempty"`
	Provider               shared.Provider          `json:"provider"`
	MSISDN                 string                   `json:"msisdn"`
	Amount                 int64                    `json:"amount"` // Stored in minor units
	Currency               string                   `json:"currency"`
	InitiatedBy            string                   `json:"initiated_by"`
	PartnerID              string                   `json:"partner_id"`
	PartnerName            string                   `json:"partner_name"`
	Status                 shared.TransactionStatus `json:"status"`
	Message                string                   `json:"message,omitempty"`
	Retryable              bool                     `json:"retryable"`
	PayerPartyIDType       string                   `json:"payer_party_id_type,omitempty"`
	PayerPartyID           string                   `json:"payer_party_id,omitempty"`
	FinancialTransactionID string                   `json:"financial_transaction_id,omitempty"`
	InitiatedAt            time.Time                `json:"initiated_at"`
	CompletedAt            *time.Time               `json:"completed_at,omitempty"`
}

// New creates a transaction in the initial state. The internal reference is
// the idempotency boundary toward the caller and must already be validated.
func New(internalRef string, provider shared.Provider, msisdn string, amount int64, currency string, initiatedBy, partnerID, partnerName string) (*Transaction, error) {
	if msisdn == "" {
		return nil, ErrEmptyDestination
	}
	if partnerID == "" {
		return nil, ErrEmptyPartner
	}
	if amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}

	return &Transaction{
		InternalRef: internalRef,
		Provider:    provider,
		MSISDN:      msisdn,
		Amount:      amount,
		Currency:    currency,
		InitiatedBy: initiatedBy,
		PartnerID:   partnerID,
		PartnerName: partnerName,
		Status:      shared.TransactionStatusInitiated,
		InitiatedAt: time.Now(),
	}, nil
}

// transitions is the directed status graph. A status never regresses; the
// only transition out of a terminal state is the explicit SUCCESS -> REFUNDED.
var transitions = map[shared.TransactionStatus][]shared.TransactionStatus{
	shared.TransactionStatusInitiated: {
		shared.TransactionStatusPendingExternal,
		shared.TransactionStatusSuccess,
		shared.TransactionStatusFailed,
		shared.TransactionStatusCancelled,
	},
	shared.TransactionStatusPendingExternal: {
		shared.TransactionStatusSuccess,
		shared.TransactionStatusFailed,
		shared.TransactionStatusCancelled,
	},
	shared.TransactionStatusSuccess: {
		shared.TransactionStatusRefunded,
	},
}

// CanTransitionTo reports whether moving to the target status is allowed
func (t *Transaction) CanTransitionTo(target shared.TransactionStatus) bool {
	if t.Status == target {
		return false
	}
	for _, allowed := range transitions[t.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo advances the status, stamping completion time on terminal states
func (t *Transaction) TransitionTo(target shared.TransactionStatus) error {
	if !t.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	t.Status = target
	if target.IsTerminal() {
		now := time.Now()
		t.CompletedAt = &now
	}
	return nil
}

// MarkAccepted records that upstream accepted the request-to-pay call
func (t *Transaction) MarkAccepted(externalRef string) error {
	t.ExternalRef = externalRef
	return t.TransitionTo(shared.TransactionStatusPendingExternal)
}

// MarkFailed records a terminal failure. Retryable failures require the
// caller to retry with a fresh idempotency key.
func (t *Transaction) MarkFailed(message string, retryable bool) error {
	t.Message = message
	t.Retryable = retryable
	return t.TransitionTo(shared.TransactionStatusFailed)
}
