package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momo-payment-gateway/internal/domain/mandate"
	"github.com/momo-payment-gateway/internal/domain/otp"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/payment_gateway/service"
	"github.com/momo-payment-gateway/internal/provider"
)

// MandateHandler handles HTTP requests for recurring-payment mandates
type MandateHandler struct {
	mandateService service.MandateService
	otpService     service.OTPService
	logger         *slog.Logger
}

// NewMandateHandler creates a new mandate handler
func NewMandateHandler(logger *slog.Logger, mandateService service.MandateService, otpService service.OTPService) *MandateHandler {
	return &MandateHandler{
		mandateService: mandateService,
		otpService:     otpService,
		logger:         logger,
	}
}

// Register creates a mandate and submits it upstream. A mandate whose
// upstream registration failed is still answered 201: it exists, INACTIVE,
// with the failure message on the record.
func (h *MandateHandler) Register(c *gin.Context) {
	var req RegisterMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		RespondBadRequest(c, "valid_from must be an RFC 3339 timestamp")
		return
	}
	validUntil, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		RespondBadRequest(c, "valid_until must be an RFC 3339 timestamp")
		return
	}

	m, err := h.mandateService.Register(c.Request.Context(), &service.MandateRegistration{
		ExternalRef: req.ExternalRef,
		Provider:    shared.Provider(req.Provider),
		MSISDN:      req.MSISDN,
		Currency:    req.Currency,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
		Frequency:   mandate.Frequency(req.Frequency),
		Message:     req.Message,
	})
	if err != nil && m == nil {
		h.respondMandateError(c, req.ExternalRef, err)
		return
	}

	RespondCreated(c, mapMandateToResponse(m))
}

// Get retrieves a mandate, refreshed from upstream when ?refresh=true
func (h *MandateHandler) Get(c *gin.Context) {
	externalRef := c.Param("externalRef")

	var (
		m   *mandate.Mandate
		err error
	)
	if c.Query("refresh") == "true" {
		m, err = h.mandateService.Refresh(c.Request.Context(), externalRef)
	} else {
		m, err = h.mandateService.Get(c.Request.Context(), externalRef)
	}
	if err != nil {
		h.respondMandateError(c, externalRef, err)
		return
	}

	RespondOK(c, mapMandateToResponse(m))
}

// Cancel terminates a mandate. Cancellation is a sensitive operation and is
// gated by a one-time code issued for that purpose.
func (h *MandateHandler) Cancel(c *gin.Context) {
	externalRef := c.Param("externalRef")

	var req CancelMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// Purpose is part of the verify match, so a code issued for another
	// purpose neither authorizes the cancel nor gets consumed.
	_, err := h.otpService.Verify(c.Request.Context(), req.Destination, req.Code, shared.OTPChannel(req.Channel), shared.OTPPurposeMandateCancel)
	if err != nil {
		if errors.Is(err, otp.ErrCodeNotFound{}) {
			RespondForbidden(c, "CODE_INVALID", "The one-time code is invalid or expired")
			return
		}
		h.logger.Error("Failed to verify one-time code", "external_ref", externalRef, "error", err)
		RespondInternalError(c)
		return
	}

	m, err := h.mandateService.Cancel(c.Request.Context(), externalRef)
	if err != nil {
		h.respondMandateError(c, externalRef, err)
		return
	}

	RespondOK(c, mapMandateToResponse(m))
}

// respondMandateError maps mandate failures onto HTTP statuses
func (h *MandateHandler) respondMandateError(c *gin.Context, externalRef string, err error) {
	var notConfigured provider.ErrProviderNotConfigured
	switch {
	case errors.Is(err, mandate.ErrMandateNotFound{}):
		RespondNotFound(c, "Mandate not found")
	case errors.Is(err, mandate.ErrDuplicateMandate{Ref: externalRef}):
		RespondConflict(c, err.Error())
	case errors.Is(err, provider.ErrUnsupportedOperation):
		RespondWithError(c, 400, "UNSUPPORTED_OPERATION", "The provider does not support recurring mandates")
	case errors.As(err, &notConfigured):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, mandate.ErrInvalidValidity), errors.Is(err, mandate.ErrUnknownFrequency), errors.Is(err, mandate.ErrEmptyDestination):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Mandate operation failed", "external_ref", externalRef, "error", err)
		RespondInternalError(c)
	}
}

// mapMandateToResponse maps a mandate to its response DTO
func mapMandateToResponse(m *mandate.Mandate) MandateResponse {
	return MandateResponse{
		ExternalRef:       m.ExternalRef,
		Provider:          string(m.Provider),
		MSISDN:            m.MSISDN,
		Status:            string(m.Status),
		LastPaymentStatus: m.LastPaymentStatus,
		ValidFrom:         m.ValidFrom.Format(time.RFC3339),
		ValidUntil:        m.ValidUntil.Format(time.RFC3339),
		Frequency:         string(m.Frequency),
		Message:           m.Message,
		CreatedAt:         m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         m.UpdatedAt.Format(time.RFC3339),
	}
}
