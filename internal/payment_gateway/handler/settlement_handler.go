package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momo-payment-gateway/internal/domain/settlement"
	"github.com/momo-payment-gateway/internal/payment_gateway/service"
)

// SettlementHandler handles HTTP requests for partner settlement summaries
type SettlementHandler struct {
	settlementService service.SettlementService
	logger            *slog.Logger
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(logger *slog.Logger, settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		logger:            logger,
	}
}

// GetByPartnerID retrieves a partner's running settlement totals
func (h *SettlementHandler) GetByPartnerID(c *gin.Context) {
	partnerID := c.Param("partnerId")

	summary, err := h.settlementService.GetPartnerSummary(c.Request.Context(), partnerID)
	if err != nil {
		if errors.Is(err, settlement.ErrSummaryNotFound{PartnerID: partnerID}) {
			RespondNotFound(c, "No settlement recorded for partner")
			return
		}
		h.logger.Error("Failed to get partner summary", "partner_id", partnerID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, PartnerSummaryResponse{
		PartnerID:   summary.PartnerID,
		PartnerName: summary.PartnerName,
		TotalAmount: summary.TotalAmount,
		TotalCount:  summary.TotalCount,
		UpdatedAt:   summary.UpdatedAt.Format(time.RFC3339),
	})
}
