package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/token"
	"github.com/momo-payment-gateway/internal/domain/transaction"
	"github.com/momo-payment-gateway/internal/payment_gateway/service"
	"github.com/momo-payment-gateway/internal/provider"
)

// Headers carried on initiation requests. The reference header is the
// caller's idempotency key; the environment header must echo the deployment.
const (
	HeaderReferenceID       = "X-Reference-Id"
	HeaderTargetEnvironment = "X-Target-Environment"
)

// TransactionHandler handles HTTP requests for collection transactions
type TransactionHandler struct {
	initiationService service.InitiationService
	logger            *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, initiationService service.InitiationService) *TransactionHandler {
	return &TransactionHandler{
		initiationService: initiationService,
		logger:            logger,
	}
}

// Initiate starts a collection. A fresh initiation answers 202 because the
// final status arrives by callback; a replayed idempotency key is a conflict
// and answers 409 with the stored transaction, never resubmitting upstream.
func (h *TransactionHandler) Initiate(c *gin.Context) {
	var req InitiateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	internalRef := c.GetHeader(HeaderReferenceID)
	if internalRef == "" {
		RespondBadRequest(c, HeaderReferenceID+" header is required")
		return
	}

	txn, existed, err := h.initiationService.Initiate(c.Request.Context(), &service.InitiationRequest{
		InternalRef:       internalRef,
		TargetEnvironment: c.GetHeader(HeaderTargetEnvironment),
		Provider:          shared.Provider(req.Provider),
		MSISDN:            req.MSISDN,
		Amount:            req.Amount,
		Currency:          req.Currency,
		CallbackURL:       req.CallbackURL,
		InitiatedBy:       req.InitiatedBy,
		PartnerID:         req.PartnerID,
		PartnerName:       req.PartnerName,
		PayerMessage:      req.PayerMessage,
		PayeeNote:         req.PayeeNote,
	})
	if err != nil {
		h.respondInitiationError(c, internalRef, err)
		return
	}

	if existed {
		RespondWithData(c, 409, mapTransactionToResponse(txn))
		return
	}
	RespondAccepted(c, mapTransactionToResponse(txn))
}

// GetByInternalRef retrieves a transaction by its idempotency key
func (h *TransactionHandler) GetByInternalRef(c *gin.Context) {
	internalRef := c.Param("internalRef")

	txn, err := h.initiationService.GetByInternalRef(c.Request.Context(), internalRef)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", "internal_ref", internalRef, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// QueryUpstreamStatus asks the provider's status endpoint what it currently
// reports for the transaction. The stored record is not touched; callbacks
// stay the only write path.
func (h *TransactionHandler) QueryUpstreamStatus(c *gin.Context) {
	internalRef := c.Param("internalRef")

	txn, result, err := h.initiationService.QueryUpstreamStatus(c.Request.Context(), internalRef)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound{}):
			RespondNotFound(c, "Transaction not found")
		case errors.Is(err, shared.ErrNoUpstreamReference):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Failed to query upstream status", "internal_ref", internalRef, "error", err)
			RespondServiceUnavailable(c, "Upstream status query failed")
		}
		return
	}

	RespondOK(c, UpstreamStatusResponse{
		InternalRef:            txn.InternalRef,
		ExternalRef:            txn.ExternalRef,
		Status:                 result.Status,
		Reason:                 result.Reason,
		FinancialTransactionID: result.FinancialTransactionID,
		PayerPartyIDType:       result.PayerPartyIDType,
		PayerPartyID:           result.PayerPartyID,
	})
}

// respondInitiationError maps initiation failures onto HTTP statuses
func (h *TransactionHandler) respondInitiationError(c *gin.Context, internalRef string, err error) {
	var notConfigured provider.ErrProviderNotConfigured
	switch {
	case errors.Is(err, shared.ErrEnvironmentMismatch):
		RespondWithError(c, 400, "ENVIRONMENT_MISMATCH", err.Error())
	case errors.Is(err, shared.ErrInvalidIdempotencyKey),
		errors.Is(err, shared.ErrInvalidCallbackURL),
		errors.Is(err, shared.ErrInvalidAmount):
		RespondBadRequest(c, err.Error())
	case errors.As(err, &notConfigured):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, shared.ErrNotWhitelisted):
		RespondForbidden(c, "NOT_WHITELISTED", err.Error())
	case errors.Is(err, token.ErrTokenUnavailable{}):
		RespondServiceUnavailable(c, "No valid upstream credential is currently available")
	default:
		h.logger.Error("Failed to initiate transaction", "internal_ref", internalRef, "error", err)
		RespondInternalError(c)
	}
}

// mapTransactionToResponse maps a transaction to its response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	response := TransactionResponse{
		InternalRef:            txn.InternalRef,
		ExternalRef:            txn.ExternalRef,
		Provider:               string(txn.Provider),
		MSISDN:                 txn.MSISDN,
		Amount:                 txn.Amount,
		Currency:               txn.Currency,
		PartnerID:              txn.PartnerID,
		Status:                 string(txn.Status),
		Message:                txn.Message,
		Retryable:              txn.Retryable,
		FinancialTransactionID: txn.FinancialTransactionID,
		InitiatedAt:            txn.InitiatedAt.Format(time.RFC3339),
	}

	if txn.CompletedAt != nil {
		response.CompletedAt = txn.CompletedAt.Format(time.RFC3339)
	}

	return response
}
