package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/momo-payment-gateway/internal/domain/callback"
	"github.com/momo-payment-gateway/internal/payment_gateway/middleware"
	"github.com/momo-payment-gateway/internal/payment_gateway/service"
)

// historyLimit bounds how many journaled deliveries one audit read returns
const historyLimit = 50

// CallbackHandler receives webhook deliveries from the upstream gateway.
// The sender is always answered 200 so its retry machinery never spins on
// problems that are ours to absorb.
type CallbackHandler struct {
	pool       *service.CallbackPool
	reconciler service.ReconciliationService
	journal    callback.Journal
	logger     *slog.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(logger *slog.Logger, pool *service.CallbackPool, reconciler service.ReconciliationService, journal callback.Journal) *CallbackHandler {
	return &CallbackHandler{
		pool:       pool,
		reconciler: reconciler,
		journal:    journal,
		logger:     logger,
	}
}

// Receive accepts one webhook delivery and queues it for reconciliation
func (h *CallbackHandler) Receive(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Discarding malformed callback", "error", err)
		RespondOK(c, gin.H{"status": "received"})
		return
	}

	delivery := &service.CallbackDelivery{
		ExternalRef:            req.ReferenceID,
		Status:                 req.Status,
		Reason:                 req.Reason,
		Amount:                 req.Amount,
		Currency:               req.Currency,
		FinancialTransactionID: req.FinancialTransactionID,
		PayerPartyIDType:       req.PayerPartyIDType,
		PayerPartyID:           req.PayerPartyID,
		PayerMessage:           req.PayerMessage,
		PayeeNote:              req.PayeeNote,
		CorrelationID:          middleware.GetCorrelationID(c),
	}

	if err := h.pool.Submit(delivery); err != nil {
		// Pool saturated or released; reconcile on the request goroutine
		// rather than dropping the delivery.
		h.logger.Warn("Worker pool rejected callback, reconciling inline",
			"external_ref", delivery.ExternalRef,
			"error", err,
		)
		if _, reconcileErr := h.reconciler.Reconcile(c.Request.Context(), delivery); reconcileErr != nil {
			h.logger.Error("Inline reconciliation failed",
				"external_ref", delivery.ExternalRef,
				"error", reconcileErr,
			)
		}
	}

	RespondOK(c, gin.H{"status": "received"})
}

// History returns the journaled deliveries for an external reference, most
// recent first. This is the audit surface for dispute investigation: every
// delivery appears here with its reconciliation outcome, including
// duplicates and deliveries that matched no transaction.
func (h *CallbackHandler) History(c *gin.Context) {
	externalRef := c.Param("externalRef")

	events, err := h.journal.GetByExternalRef(c.Request.Context(), externalRef, historyLimit)
	if err != nil {
		h.logger.Error("Failed to read callback journal", "external_ref", externalRef, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, events)
}
