package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momo-payment-gateway/internal/domain/otp"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/payment_gateway/service"
)

// OTPHandler handles HTTP requests for one-time codes
type OTPHandler struct {
	otpService service.OTPService
	logger     *slog.Logger
}

// NewOTPHandler creates a new one-time-code handler
func NewOTPHandler(logger *slog.Logger, otpService service.OTPService) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
		logger:     logger,
	}
}

// Issue generates a code and hands it to the notification pipeline. The
// response acknowledges issuance without echoing the code.
func (h *OTPHandler) Issue(c *gin.Context) {
	var req IssueCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	code, err := h.otpService.Issue(c.Request.Context(), req.Destination, shared.OTPChannel(req.Channel), shared.OTPPurpose(req.Purpose))
	if err != nil {
		if errors.Is(err, otp.ErrEmptyDestination) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to issue one-time code", "destination", req.Destination, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, gin.H{
		"destination": code.Destination,
		"channel":     string(code.Channel),
		"purpose":     string(code.Purpose),
		"expires_at":  code.ExpiresAt.Format(time.RFC3339),
	})
}

// Verify consumes a code. Wrong, expired, and already-used codes are all
// answered identically so the endpoint leaks nothing about stored codes.
func (h *OTPHandler) Verify(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	code, err := h.otpService.Verify(c.Request.Context(), req.Destination, req.Code, shared.OTPChannel(req.Channel), shared.OTPPurpose(req.Purpose))
	if err != nil {
		if errors.Is(err, otp.ErrCodeNotFound{}) {
			RespondForbidden(c, "CODE_INVALID", "The one-time code is invalid or expired")
			return
		}
		h.logger.Error("Failed to verify one-time code", "destination", req.Destination, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{
		"verified": true,
		"purpose":  string(code.Purpose),
	})
}
