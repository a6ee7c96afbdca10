package shared

import "time"

// Event type names as published on the event bus
const (
	EventTransactionCreated       = "transaction.created"
	EventTransactionStatusChanged = "transaction.status_changed"
	EventMandateStateChanged      = "mandate.state_changed"
	EventCodeIssued               = "otp.code_issued"
)

// TransactionEvent is published on the transaction events topic whenever a
// transaction is created or changes status.
type TransactionEvent struct {
	Type          string            `json:"type"`
	InternalRef   string            `json:"internal_ref"`
	ExternalRef   string            `json:"external_ref,omitempty"`
	Provider      Provider          `json:"provider"`
	Status        TransactionStatus `json:"status"`
	Message       string            `json:"message,omitempty"`
	PartnerID     string            `json:"partner_id,omitempty"`
	Amount        int64             `json:"amount"` // Minor units
	Currency      string            `json:"currency"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// MandateEvent is published on the mandate events topic on every mandate
// state transition.
type MandateEvent struct {
	Type          string        `json:"type"`
	ExternalRef   string        `json:"external_ref"`
	Provider      Provider      `json:"provider"`
	Status        MandateStatus `json:"status"`
	Message       string        `json:"message,omitempty"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// CodeIssuedEvent carries a freshly issued one-time code to the notification
// collaborator. The code travels on the bus only; it is never echoed in the
// issuing call's response.
type CodeIssuedEvent struct {
	Type        string     `json:"type"`
	Destination string     `json:"destination"`
	Channel     OTPChannel `json:"channel"`
	Purpose     OTPPurpose `json:"purpose"`
	Code        string     `json:"code"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Timestamp   time.Time  `json:"timestamp"`
}
