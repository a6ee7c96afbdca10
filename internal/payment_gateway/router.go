package payment_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momo-payment-gateway/internal/payment_gateway/handler"
	"github.com/momo-payment-gateway/internal/payment_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	callbackHandler *handler.CallbackHandler,
	mandateHandler *handler.MandateHandler,
	otpHandler *handler.OTPHandler,
	settlementHandler *handler.SettlementHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Collection transactions
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Initiate)
			transactions.GET("/:internalRef", transactionHandler.GetByInternalRef)
			transactions.GET("/:internalRef/upstream-status", transactionHandler.QueryUpstreamStatus)
		}

		// Upstream webhook deliveries and their audit trail
		v1.POST("/callbacks/transactions", callbackHandler.Receive)
		v1.GET("/callbacks/transactions/:externalRef", callbackHandler.History)

		// Recurring mandates
		mandates := v1.Group("/mandates")
		{
			mandates.POST("", mandateHandler.Register)
			mandates.GET("/:externalRef", mandateHandler.Get)
			mandates.DELETE("/:externalRef", mandateHandler.Cancel)
		}

		// One-time codes
		codes := v1.Group("/codes")
		{
			codes.POST("", otpHandler.Issue)
			codes.POST("/verify", otpHandler.Verify)
		}

		// Partner settlement summaries
		v1.GET("/settlements/:partnerId", settlementHandler.GetByPartnerID)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
