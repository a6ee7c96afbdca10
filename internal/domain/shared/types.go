package shared

// TokenType identifies which upstream product a bearer token belongs to
type TokenType string

const (
	TokenTypeCollection   TokenType = "COLLECTION"
	TokenTypeDisbursement TokenType = "DISBURSEMENT"
)

// Provider enumerates the supported mobile-money networks
type Provider string

const (
	ProviderMTN        Provider = "MTN"
	ProviderVodafone   Provider = "VODAFONE"
	ProviderAirtelTigo Provider = "AIRTELTIGO"
)

// TransactionStatus defines collection transaction states
type TransactionStatus string

const (
	TransactionStatusInitiated       TransactionStatus = "INITIATED"
	TransactionStatusPendingExternal TransactionStatus = "PENDING_EXTERNAL"
	TransactionStatusSuccess         TransactionStatus = "SUCCESS"
	TransactionStatusFailed          TransactionStatus = "FAILED"
	TransactionStatusCancelled       TransactionStatus = "CANCELLED"
	TransactionStatusRefunded        TransactionStatus = "REFUNDED"
)

// IsTerminal reports whether no further transition is expected for the status.
// SUCCESS is terminal except for the explicit refund transition.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusSuccess, TransactionStatusFailed, TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// MandateStatus defines recurring-payment mandate states
type MandateStatus string

const (
	MandateStatusInactive  MandateStatus = "INACTIVE"
	MandateStatusPending   MandateStatus = "PENDING"
	MandateStatusActive    MandateStatus = "ACTIVE"
	MandateStatusCancelled MandateStatus = "CANCELLED"
	MandateStatusExpired   MandateStatus = "EXPIRED"
)

// OTPChannel defines one-time-code delivery channels
type OTPChannel string

const (
	OTPChannelSMS   OTPChannel = "SMS"
	OTPChannelEmail OTPChannel = "EMAIL"
)

// OTPPurpose defines the sensitive operation a one-time code gates
type OTPPurpose string

const (
	OTPPurposeDisbursement  OTPPurpose = "DISBURSEMENT_APPROVAL"
	OTPPurposeMandateCancel OTPPurpose = "MANDATE_CANCEL"
	OTPPurposeAccountChange OTPPurpose = "ACCOUNT_CHANGE"
)
