package callback

import (
	"context"
	"time"
)

// Reconciliation outcomes recorded alongside each journaled callback
const (
	OutcomeApplied      = "APPLIED"
	OutcomeDuplicate    = "DUPLICATE"
	OutcomeUnknownRef   = "UNKNOWN_REFERENCE"
	OutcomeUnrecognized = "UNRECOGNIZED_STATUS"
	OutcomeError        = "ERROR"
)

// Event is one journaled inbound webhook delivery. The journal is
// append-only and exists for audit and dispute investigation.
type Event struct {
	ExternalRef            string    `json:"external_ref" bson:"external_ref"`
	Status                 string    `json:"status" bson:"status"`
	Reason                 string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Amount                 string    `json:"amount,omitempty" bson:"amount,omitempty"`
	Currency               string    `json:"currency,omitempty" bson:"currency,omitempty"`
	PayerPartyIDType       string    `json:"payer_party_id_type,omitempty" bson:"payer_party_id_type,omitempty"`
	PayerPartyID           string    `json:"payer_party_id,omitempty" bson:"payer_party_id,omitempty"`
	PayerMessage           string    `json:"payer_message,omitempty" bson:"payer_message,omitempty"`
	PayeeNote              string    `json:"payee_note,omitempty" bson:"payee_note,omitempty"`
	FinancialTransactionID string    `json:"financial_transaction_id,omitempty" bson:"financial_transaction_id,omitempty"`
	Outcome                string    `json:"outcome,omitempty" bson:"outcome,omitempty"`
	ReceivedAt             time.Time `json:"received_at" bson:"received_at"`
}

// Journal stores every inbound callback delivery, including duplicates and
// deliveries for unknown references.
type Journal interface {
	Append(ctx context.Context, event *Event) error
	GetByExternalRef(ctx context.Context, externalRef string, limit int) ([]*Event, error)
}
