package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/momo-payment-gateway/internal/domain/callback"
	"github.com/momo-payment-gateway/internal/domain/settlement"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/transaction"
	"github.com/momo-payment-gateway/internal/platform/messaging/producers"
)

// callbackStatuses folds the gateway's callback vocabulary into the internal
// status enum. Unlisted values leave the transaction unchanged.
var callbackStatuses = map[string]shared.TransactionStatus{
	"PENDING":    shared.TransactionStatusPendingExternal,
	"PROCESSING": shared.TransactionStatusPendingExternal,
	"SUCCESSFUL": shared.TransactionStatusSuccess,
	"SUCCESS":    shared.TransactionStatusSuccess,
	"COMPLETED":  shared.TransactionStatusSuccess,
	"FAILED":     shared.TransactionStatusFailed,
	"DECLINED":   shared.TransactionStatusFailed,
	"ERROR":      shared.TransactionStatusFailed,
	"CANCELLED":  shared.TransactionStatusCancelled,
	"REFUNDED":   shared.TransactionStatusRefunded,
}

// ReconciliationServiceImpl implements the ReconciliationService interface.
// The status update, the settlement aggregate, and the row lock all commit
// in one database transaction, so a redelivered SUCCESS can never credit a
// partner twice.
type ReconciliationServiceImpl struct {
	db               TxExecutor
	txnRepo          transaction.Repository
	settlementRepo   settlement.Repository
	journal          callback.Journal
	producer         producers.EventPublisher
	transactionTopic string
	logger           *slog.Logger
}

// NewReconciliationService creates a new callback reconciliation service
func NewReconciliationService(
	logger *slog.Logger,
	db TxExecutor,
	txnRepo transaction.Repository,
	settlementRepo settlement.Repository,
	journal callback.Journal,
	producer producers.EventPublisher,
	transactionTopic string,
) ReconciliationService {
	return &ReconciliationServiceImpl{
		db:               db,
		txnRepo:          txnRepo,
		settlementRepo:   settlementRepo,
		journal:          journal,
		producer:         producer,
		transactionTopic: transactionTopic,
		logger:           logger,
	}
}

// Reconcile applies one callback delivery and journals it with its outcome.
// Unknown references, duplicates, and unrecognized statuses are absorbed;
// the returned error covers infrastructure failures only.
func (s *ReconciliationServiceImpl) Reconcile(ctx context.Context, delivery *CallbackDelivery) (string, error) {
	logger := s.logger
	if delivery.CorrelationID != "" {
		logger = s.logger.With("correlation_id", delivery.CorrelationID)
	}

	outcome, applied, err := s.apply(ctx, delivery, logger)
	if err != nil {
		outcome = callback.OutcomeError
	}

	s.journalDelivery(ctx, delivery, outcome, logger)

	if err != nil {
		logger.Error("Callback reconciliation failed",
			"external_ref", delivery.ExternalRef,
			"callback_status", delivery.Status,
			"error", err,
		)
		return outcome, err
	}

	if applied != nil {
		s.publishStatusChanged(ctx, applied, delivery.CorrelationID)
	}

	logger.Info("Callback reconciled",
		"external_ref", delivery.ExternalRef,
		"callback_status", delivery.Status,
		"outcome", outcome,
	)
	return outcome, nil
}

// apply runs the reconciliation inside a database transaction. It returns
// the outcome and, when a transition was applied, the updated transaction.
func (s *ReconciliationServiceImpl) apply(ctx context.Context, delivery *CallbackDelivery, logger *slog.Logger) (string, *transaction.Transaction, error) {
	var (
		outcome string
		applied *transaction.Transaction
	)

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		txnRepo := s.txnRepo.WithTx(tx)

		txn, err := txnRepo.LockByExternalRef(ctx, delivery.ExternalRef)
		if err != nil {
			if errors.Is(err, transaction.ErrTransactionNotFound{}) {
				logger.Warn("Callback for unknown reference", "external_ref", delivery.ExternalRef)
				outcome = callback.OutcomeUnknownRef
				return nil
			}
			return err
		}

		target, ok := callbackStatuses[strings.ToUpper(delivery.Status)]
		if !ok {
			logger.Warn("Callback carried unrecognized status",
				"external_ref", delivery.ExternalRef,
				"callback_status", delivery.Status,
			)
			outcome = callback.OutcomeUnrecognized
			return nil
		}

		if !txn.CanTransitionTo(target) {
			// Redelivery of a status already applied, or a late delivery
			// after a terminal state. Either way a no-op.
			outcome = callback.OutcomeDuplicate
			return nil
		}

		if err := txn.TransitionTo(target); err != nil {
			return err
		}
		if delivery.Reason != "" {
			txn.Message = delivery.Reason
		}
		if delivery.FinancialTransactionID != "" {
			txn.FinancialTransactionID = delivery.FinancialTransactionID
		}
		if delivery.PayerPartyID != "" {
			txn.PayerPartyIDType = delivery.PayerPartyIDType
			txn.PayerPartyID = delivery.PayerPartyID
		}

		if err := txnRepo.Update(ctx, txn); err != nil {
			return err
		}

		// Only a clean success credits the partner: a success status carrying
		// a failure reason is suspect and is recorded without settling.
		if target == shared.TransactionStatusSuccess && delivery.Reason == "" {
			if err := s.settlementRepo.WithTx(tx).Upsert(ctx, txn.PartnerID, txn.PartnerName, txn.Amount); err != nil {
				return err
			}
		}

		outcome = callback.OutcomeApplied
		applied = txn
		return nil
	})
	if err != nil {
		return callback.OutcomeError, nil, err
	}
	return outcome, applied, nil
}

// journalDelivery appends the delivery to the audit journal. Journal
// failures are logged but never fail the reconciliation.
func (s *ReconciliationServiceImpl) journalDelivery(ctx context.Context, delivery *CallbackDelivery, outcome string, logger *slog.Logger) {
	event := &callback.Event{
		ExternalRef:            delivery.ExternalRef,
		Status:                 delivery.Status,
		Reason:                 delivery.Reason,
		Amount:                 delivery.Amount,
		Currency:               delivery.Currency,
		PayerPartyIDType:       delivery.PayerPartyIDType,
		PayerPartyID:           delivery.PayerPartyID,
		PayerMessage:           delivery.PayerMessage,
		PayeeNote:              delivery.PayeeNote,
		FinancialTransactionID: delivery.FinancialTransactionID,
		Outcome:                outcome,
		ReceivedAt:             time.Now(),
	}
	if err := s.journal.Append(ctx, event); err != nil {
		logger.Error("Failed to journal callback delivery",
			"external_ref", delivery.ExternalRef,
			"error", err,
		)
	}
}

func (s *ReconciliationServiceImpl) publishStatusChanged(ctx context.Context, txn *transaction.Transaction, correlationID string) {
	event := &shared.TransactionEvent{
		Type:          shared.EventTransactionStatusChanged,
		InternalRef:   txn.InternalRef,
		ExternalRef:   txn.ExternalRef,
		Provider:      txn.Provider,
		Status:        txn.Status,
		Message:       txn.Message,
		PartnerID:     txn.PartnerID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
	if err := s.producer.Publish(ctx, s.transactionTopic, txn.InternalRef, event); err != nil {
		s.logger.Error("Failed to publish status change event",
			"internal_ref", txn.InternalRef,
			"error", err,
		)
	}
}
