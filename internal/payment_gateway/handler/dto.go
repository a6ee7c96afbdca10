package handler

// InitiateTransactionRequest represents a request to start a collection.
// The idempotency key and target environment travel as headers.
type InitiateTransactionRequest struct {
	Provider     string `json:"provider" binding:"required,oneof=MTN VODAFONE AIRTELTIGO"`
	MSISDN       string `json:"msisdn" binding:"required"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Currency     string `json:"currency" binding:"required,len=3"`
	CallbackURL  string `json:"callback_url" binding:"required"`
	InitiatedBy  string `json:"initiated_by" binding:"required"`
	PartnerID    string `json:"partner_id" binding:"required"`
	PartnerName  string `json:"partner_name" binding:"required"`
	PayerMessage string `json:"payer_message,omitempty"`
	PayeeNote    string `json:"payee_note,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	InternalRef            string `json:"internal_ref"`
	ExternalRef            string `json:"external_ref,omitempty"`
	Provider               string `json:"provider"`
	MSISDN                 string `json:"msisdn"`
	Amount                 int64  `json:"amount"`
	Currency               string `json:"currency"`
	PartnerID              string `json:"partner_id"`
	Status                 string `json:"status"`
	Message                string `json:"message,omitempty"`
	Retryable              bool   `json:"retryable"`
	FinancialTransactionID string `json:"financial_transaction_id,omitempty"`
	InitiatedAt            string `json:"initiated_at"`
	CompletedAt            string `json:"completed_at,omitempty"`
}

// UpstreamStatusResponse reports what the provider's status endpoint says
// about a transaction right now.
type UpstreamStatusResponse struct {
	InternalRef            string `json:"internal_ref"`
	ExternalRef            string `json:"external_ref"`
	Status                 string `json:"status"`
	Reason                 string `json:"reason,omitempty"`
	FinancialTransactionID string `json:"financial_transaction_id,omitempty"`
	PayerPartyIDType       string `json:"payer_party_id_type,omitempty"`
	PayerPartyID           string `json:"payer_party_id,omitempty"`
}

// CallbackRequest is the webhook payload delivered by the upstream gateway
type CallbackRequest struct {
	ReferenceID            string `json:"referenceId" binding:"required"`
	Status                 string `json:"status" binding:"required"`
	Reason                 string `json:"reason,omitempty"`
	Amount                 string `json:"amount,omitempty"`
	Currency               string `json:"currency,omitempty"`
	FinancialTransactionID string `json:"financialTransactionId,omitempty"`
	PayerPartyIDType       string `json:"payerPartyIdType,omitempty"`
	PayerPartyID           string `json:"payerPartyId,omitempty"`
	PayerMessage           string `json:"payerMessage,omitempty"`
	PayeeNote              string `json:"payeeNote,omitempty"`
}

// RegisterMandateRequest represents a request to register a recurring mandate
type RegisterMandateRequest struct {
	ExternalRef string `json:"external_ref" binding:"required,uuid"`
	Provider    string `json:"provider" binding:"required,oneof=MTN VODAFONE AIRTELTIGO"`
	MSISDN      string `json:"msisdn" binding:"required"`
	Currency    string `json:"currency" binding:"required,len=3"`
	ValidFrom   string `json:"valid_from" binding:"required"`
	ValidUntil  string `json:"valid_until" binding:"required"`
	Frequency   string `json:"frequency" binding:"required,oneof=DAILY WEEKLY MONTHLY"`
	Message     string `json:"message,omitempty"`
}

// MandateResponse represents a mandate in API responses
type MandateResponse struct {
	ExternalRef       string `json:"external_ref"`
	Provider          string `json:"provider"`
	MSISDN            string `json:"msisdn"`
	Status            string `json:"status"`
	LastPaymentStatus string `json:"last_payment_status,omitempty"`
	ValidFrom         string `json:"valid_from"`
	ValidUntil        string `json:"valid_until"`
	Frequency         string `json:"frequency"`
	Message           string `json:"message,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// CancelMandateRequest carries the one-time code gating a cancellation
type CancelMandateRequest struct {
	Destination string `json:"destination" binding:"required"`
	Code        string `json:"code" binding:"required,len=6"`
	Channel     string `json:"channel" binding:"required,oneof=SMS EMAIL"`
}

// IssueCodeRequest represents a request to issue a one-time code
type IssueCodeRequest struct {
	Destination string `json:"destination" binding:"required"`
	Channel     string `json:"channel" binding:"required,oneof=SMS EMAIL"`
	Purpose     string `json:"purpose" binding:"required,oneof=DISBURSEMENT_APPROVAL MANDATE_CANCEL ACCOUNT_CHANGE"`
}

// VerifyCodeRequest represents a request to verify a one-time code
type VerifyCodeRequest struct {
	Destination string `json:"destination" binding:"required"`
	Code        string `json:"code" binding:"required,len=6"`
	Channel     string `json:"channel" binding:"required,oneof=SMS EMAIL"`
	Purpose     string `json:"purpose" binding:"required,oneof=DISBURSEMENT_APPROVAL MANDATE_CANCEL ACCOUNT_CHANGE"`
}

// PartnerSummaryResponse represents a partner's settlement totals
type PartnerSummaryResponse struct {
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name"`
	TotalAmount int64  `json:"total_amount"`
	TotalCount  int64  `json:"total_count"`
	UpdatedAt   string `json:"updated_at"`
}
