package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/momo-payment-gateway/internal/config"
	"github.com/momo-payment-gateway/internal/data/mongo"
	"github.com/momo-payment-gateway/internal/data/postgres"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/logger"
	"github.com/momo-payment-gateway/internal/payment_gateway"
	"github.com/momo-payment-gateway/internal/payment_gateway/service"
	"github.com/momo-payment-gateway/internal/platform/messaging/producers"
	"github.com/momo-payment-gateway/internal/platform/persistence"
	"github.com/momo-payment-gateway/internal/platform/upstream"
	"github.com/momo-payment-gateway/internal/platform/whitelist"
	"github.com/momo-payment-gateway/internal/provider"
	"github.com/momo-payment-gateway/internal/provider/mtn"
	"github.com/momo-payment-gateway/internal/scheduler"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("payment_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize the event producer for all event topics
	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	txnRepo := postgres.NewTransactionRepository(log, postgresDB)
	tokenRepo := postgres.NewTokenRepository(log, postgresDB)
	mandateRepo := postgres.NewMandateRepository(log, postgresDB)
	otpRepo := postgres.NewOTPRepository(log, postgresDB)
	settlementRepo := postgres.NewSettlementRepository(log, postgresDB)
	callbackJournal := mongo.NewCallbackJournal(log, mongoDB.Database())

	// Initialize upstream clients and the provider registry
	gatewayClient := upstream.NewClient(log, &cfg.Gateway)
	whitelistClient := whitelist.NewClient(log, &cfg.Whitelist)

	tokenManager := service.NewTokenManager(log, gatewayClient, tokenRepo, &cfg.Gateway)

	registry := provider.NewRegistry()
	registry.Register(shared.ProviderMTN, mtn.NewAdapter(log, gatewayClient, tokenManager, &cfg.Gateway))

	// Initialize services
	initiationService := service.NewInitiationService(log, postgresDB, txnRepo, registry, whitelistClient,
		eventProducer, cfg.Kafka.TransactionTopic, cfg.Gateway.TargetEnvironment)
	reconciliationService := service.NewReconciliationService(log, postgresDB, txnRepo, settlementRepo,
		callbackJournal, eventProducer, cfg.Kafka.TransactionTopic)
	mandateService := service.NewMandateService(log, mandateRepo, registry, eventProducer, cfg.Kafka.MandateTopic)
	otpService := service.NewOTPService(log, otpRepo, eventProducer, cfg.Kafka.OTPTopic, cfg.OTP.TTL)
	settlementService := service.NewSettlementService(log, settlementRepo)

	callbackPool, err := service.NewCallbackPool(log, reconciliationService, cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize callback worker pool", "error", err)
		os.Exit(1)
	}

	// Start background schedulers
	tokenRefresher := scheduler.NewTokenRefresher(log, tokenManager, cfg.Gateway.TokenRefreshInterval)
	go tokenRefresher.Start(appCtx)

	otpSweeper := scheduler.NewOTPSweeper(log, otpService, cfg.OTP.SweepInterval)
	go otpSweeper.Start(appCtx)

	// Initialize REST server
	server := payment_gateway.NewServer(log, cfg, &payment_gateway.Services{
		Initiation:      initiationService,
		Reconciliation:  reconciliationService,
		CallbackPool:    callbackPool,
		CallbackJournal: callbackJournal,
		Mandates:        mandateService,
		Codes:           otpService,
		Settlements:     settlementService,
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context to stop the schedulers
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting new requests first, then drain the callback pool
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}
	callbackPool.Release()

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka event producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
