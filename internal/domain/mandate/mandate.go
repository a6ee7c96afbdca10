package mandate

import (
	"errors"
	"time"

	"github.com/momo-payment-gateway/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyDestination   = errors.New("destination number cannot be empty")
	ErrInvalidValidity    = errors.New("mandate validity window is invalid")
	ErrUnknownFrequency   = errors.New("unknown mandate frequency")
	ErrMandateNotPending  = errors.New("mandate is not in a pending state")
	ErrMandateUnregisterd = errors.New("mandate has no upstream identifier")
)

// Frequency defines how often a mandate authorizes a recurring debit
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

// Mandate is a recurring payment authorization ("pre-approval"). It is
// created INACTIVE before any upstream call; a failed registration leaves it
// INACTIVE with the failure message recorded.
type Mandate struct {
	ExternalRef       string               `json:"external_ref"`
	MSISDN            string               `json:"msisdn"`
	Provider          shared.Provider      `json:"provider"`
	Status            shared.MandateStatus `json:"status"`
	LastPaymentStatus string               `json:"last_payment_status,omitempty"`
	ValidFrom         time.Time            `json:"valid_from"`
	ValidUntil        time.Time            `json:"valid_until"`
	Frequency         Frequency            `json:"frequency"`
	Message           string               `json:"message,omitempty"`
	UpstreamMandateID string               `json:"upstream_mandate_id,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// New creates an INACTIVE mandate ready for upstream registration
func New(externalRef string, provider shared.Provider, msisdn string, validFrom, validUntil time.Time, frequency Frequency) (*Mandate, error) {
	if msisdn == "" {
		return nil, ErrEmptyDestination
	}
	if !validUntil.After(validFrom) {
		return nil, ErrInvalidValidity
	}
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return nil, ErrUnknownFrequency
	}

	now := time.Now()
	return &Mandate{
		ExternalRef: externalRef,
		MSISDN:      msisdn,
		Provider:    provider,
		Status:      shared.MandateStatusInactive,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
		Frequency:   frequency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkRegistered records a successful upstream registration
func (m *Mandate) MarkRegistered(upstreamID string) {
	m.UpstreamMandateID = upstreamID
	m.Status = shared.MandateStatusPending
	m.UpdatedAt = time.Now()
}

// MarkRegistrationFailed keeps the mandate INACTIVE with the failure recorded
func (m *Mandate) MarkRegistrationFailed(message string) {
	m.Message = message
	m.Status = shared.MandateStatusInactive
	m.UpdatedAt = time.Now()
}

// ApplyUpstreamState folds an upstream-reported status into the mandate
func (m *Mandate) ApplyUpstreamState(status shared.MandateStatus, lastPayment string) {
	m.Status = status
	m.LastPaymentStatus = lastPayment
	m.UpdatedAt = time.Now()
}
