// Package payment_gateway wires the HTTP surface of the payment core: the
// initiation and query API for partner callers, the webhook endpoint for the
// upstream gateway, and the mandate, code, and settlement endpoints.
package payment_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momo-payment-gateway/internal/config"
	"github.com/momo-payment-gateway/internal/domain/callback"
	"github.com/momo-payment-gateway/internal/payment_gateway/handler"
	"github.com/momo-payment-gateway/internal/payment_gateway/service"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// Services groups everything the HTTP surface depends on
type Services struct {
	Initiation      service.InitiationService
	Reconciliation  service.ReconciliationService
	CallbackPool    *service.CallbackPool
	CallbackJournal callback.Journal
	Mandates        service.MandateService
	Codes           service.OTPService
	Settlements     service.SettlementService
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services *Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	transactionHandler := handler.NewTransactionHandler(log, services.Initiation)
	callbackHandler := handler.NewCallbackHandler(log, services.CallbackPool, services.Reconciliation, services.CallbackJournal)
	mandateHandler := handler.NewMandateHandler(log, services.Mandates, services.Codes)
	otpHandler := handler.NewOTPHandler(log, services.Codes)
	settlementHandler := handler.NewSettlementHandler(log, services.Settlements)

	setupRouter(log, httpRouter, transactionHandler, callbackHandler, mandateHandler, otpHandler, settlementHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
