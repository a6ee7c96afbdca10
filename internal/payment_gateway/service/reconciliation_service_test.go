package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/momo-payment-gateway/internal/domain/callback"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPendingTransaction(externalRef string) *transaction.Transaction {
	return &transaction.Transaction{
		InternalRef: uuid.New().String(),
		ExternalRef: externalRef,
		Provider:    shared.ProviderMTN,
		MSISDN:      "233241234567",
		Amount:      2500,
		Currency:    "GHS",
		Status:      shared.TransactionStatusPendingExternal,
		PartnerID:   "partner-1",
		PartnerName: "Acme Disbursements",
	}
}

func newReconciliationFixture() (ReconciliationService, *MockTransactionRepository, *MockSettlementRepository, *MockJournal, *MockEventPublisher) {
	txnRepo := new(MockTransactionRepository)
	settlementRepo := new(MockSettlementRepository)
	journal := new(MockJournal)
	producer := new(MockEventPublisher)

	svc := NewReconciliationService(newTestLogger(), &fakeTxExecutor{}, txnRepo, settlementRepo, journal, producer, testTransactionTopic)
	return svc, txnRepo, settlementRepo, journal, producer
}

func TestReconciliationService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesSuccessAndCreditsPartner", func(t *testing.T) {
		svc, txnRepo, settlementRepo, journal, producer := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		txnRepo.On("Update", ctx, txn).Return(nil).Once()
		settlementRepo.On("Upsert", ctx, txn.PartnerID, txn.PartnerName, txn.Amount).Return(nil).Once()
		journal.On("Append", ctx, mock.AnythingOfType("*callback.Event")).Return(nil).Once()
		producer.On("Publish", ctx, testTransactionTopic, txn.InternalRef, mock.Anything).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{
			ExternalRef:            externalRef,
			Status:                 "SUCCESSFUL",
			FinancialTransactionID: "FIN-8891",
		})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeApplied, outcome)
		assert.Equal(t, shared.TransactionStatusSuccess, txn.Status)
		assert.Equal(t, "FIN-8891", txn.FinancialTransactionID)
		assert.NotNil(t, txn.CompletedAt)
		txnRepo.AssertExpectations(t)
		settlementRepo.AssertExpectations(t)
		journal.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("FailureSkipsSettlement", func(t *testing.T) {
		svc, txnRepo, settlementRepo, journal, producer := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		txnRepo.On("Update", ctx, txn).Return(nil).Once()
		journal.On("Append", ctx, mock.AnythingOfType("*callback.Event")).Return(nil).Once()
		producer.On("Publish", ctx, testTransactionTopic, txn.InternalRef, mock.Anything).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{
			ExternalRef: externalRef,
			Status:      "DECLINED",
			Reason:      "PAYER_LIMIT_REACHED",
		})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeApplied, outcome)
		assert.Equal(t, shared.TransactionStatusFailed, txn.Status)
		assert.Equal(t, "PAYER_LIMIT_REACHED", txn.Message)
		settlementRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SuccessWithFailureReasonSkipsSettlement", func(t *testing.T) {
		svc, txnRepo, settlementRepo, journal, producer := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		txnRepo.On("Update", ctx, txn).Return(nil).Once()
		journal.On("Append", ctx, mock.AnythingOfType("*callback.Event")).Return(nil).Once()
		producer.On("Publish", ctx, testTransactionTopic, txn.InternalRef, mock.Anything).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{
			ExternalRef: externalRef,
			Status:      "SUCCESSFUL",
			Reason:      "PARTIAL_SETTLEMENT_HOLD",
		})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeApplied, outcome)
		assert.Equal(t, shared.TransactionStatusSuccess, txn.Status)
		settlementRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RejectedStatusIsUnrecognized", func(t *testing.T) {
		svc, txnRepo, settlementRepo, journal, _ := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		journal.On("Append", ctx, mock.MatchedBy(func(e *callback.Event) bool {
			return e.Outcome == callback.OutcomeUnrecognized
		})).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{ExternalRef: externalRef, Status: "REJECTED"})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeUnrecognized, outcome)
		assert.Equal(t, shared.TransactionStatusPendingExternal, txn.Status)
		txnRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		settlementRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RedeliveryIsDuplicate", func(t *testing.T) {
		svc, txnRepo, settlementRepo, journal, producer := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)
		txn.Status = shared.TransactionStatusSuccess

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		journal.On("Append", ctx, mock.MatchedBy(func(e *callback.Event) bool {
			return e.Outcome == callback.OutcomeDuplicate
		})).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{ExternalRef: externalRef, Status: "SUCCESSFUL"})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeDuplicate, outcome)
		settlementRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		txnRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		journal.AssertExpectations(t)
	})

	t.Run("UnknownReferenceIsAbsorbed", func(t *testing.T) {
		svc, txnRepo, _, journal, _ := newReconciliationFixture()
		externalRef := uuid.New().String()

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(nil, transaction.ErrTransactionNotFound{Ref: externalRef}).Once()
		journal.On("Append", ctx, mock.MatchedBy(func(e *callback.Event) bool {
			return e.Outcome == callback.OutcomeUnknownRef
		})).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{ExternalRef: externalRef, Status: "SUCCESSFUL"})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeUnknownRef, outcome)
		journal.AssertExpectations(t)
	})

	t.Run("UnrecognizedStatusIsAbsorbed", func(t *testing.T) {
		svc, txnRepo, _, journal, _ := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		journal.On("Append", ctx, mock.MatchedBy(func(e *callback.Event) bool {
			return e.Outcome == callback.OutcomeUnrecognized
		})).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{ExternalRef: externalRef, Status: "SHRUG"})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeUnrecognized, outcome)
		assert.Equal(t, shared.TransactionStatusPendingExternal, txn.Status)
	})

	t.Run("StatusVocabularyIsCaseInsensitive", func(t *testing.T) {
		svc, txnRepo, settlementRepo, journal, producer := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		txnRepo.On("Update", ctx, txn).Return(nil).Once()
		settlementRepo.On("Upsert", ctx, txn.PartnerID, txn.PartnerName, txn.Amount).Return(nil).Once()
		journal.On("Append", ctx, mock.Anything).Return(nil).Once()
		producer.On("Publish", ctx, testTransactionTopic, txn.InternalRef, mock.Anything).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{ExternalRef: externalRef, Status: "successful"})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeApplied, outcome)
	})

	t.Run("InfrastructureFailureJournalsError", func(t *testing.T) {
		svc, txnRepo, _, journal, producer := newReconciliationFixture()
		externalRef := uuid.New().String()

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(nil, assert.AnError).Once()
		journal.On("Append", ctx, mock.MatchedBy(func(e *callback.Event) bool {
			return e.Outcome == callback.OutcomeError
		})).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{ExternalRef: externalRef, Status: "SUCCESSFUL"})

		require.Error(t, err)
		assert.Equal(t, callback.OutcomeError, outcome)
		producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("JournalFailureDoesNotFailReconciliation", func(t *testing.T) {
		svc, txnRepo, settlementRepo, journal, producer := newReconciliationFixture()
		externalRef := uuid.New().String()
		txn := newPendingTransaction(externalRef)

		txnRepo.On("LockByExternalRef", ctx, externalRef).Return(txn, nil).Once()
		txnRepo.On("Update", ctx, txn).Return(nil).Once()
		settlementRepo.On("Upsert", ctx, txn.PartnerID, txn.PartnerName, txn.Amount).Return(nil).Once()
		journal.On("Append", ctx, mock.Anything).Return(assert.AnError).Once()
		producer.On("Publish", ctx, testTransactionTopic, txn.InternalRef, mock.Anything).Return(nil).Once()

		outcome, err := svc.Reconcile(ctx, &CallbackDelivery{ExternalRef: externalRef, Status: "COMPLETED"})

		require.NoError(t, err)
		assert.Equal(t, callback.OutcomeApplied, outcome)
	})
}
