package transaction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(t *testing.T) *Transaction {
	t.Helper()
	txn, err := New(uuid.New().String(), shared.ProviderMTN, "233241234567", 2500, "GHS",
		"api-user", "partner-1", "Acme Utilities")
	require.NoError(t, err)
	return txn
}

func TestNew(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		txn := newTestTransaction(t)

		assert.Equal(t, shared.TransactionStatusInitiated, txn.Status)
		assert.Empty(t, txn.ExternalRef)
		assert.Nil(t, txn.CompletedAt)
		assert.False(t, txn.InitiatedAt.IsZero())
	})

	t.Run("EmptyDestination", func(t *testing.T) {
		_, err := New(uuid.New().String(), shared.ProviderMTN, "", 2500, "GHS", "api-user", "partner-1", "Acme")
		assert.ErrorIs(t, err, ErrEmptyDestination)
	})

	t.Run("EmptyPartner", func(t *testing.T) {
		_, err := New(uuid.New().String(), shared.ProviderMTN, "233241234567", 2500, "GHS", "api-user", "", "Acme")
		assert.ErrorIs(t, err, ErrEmptyPartner)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		_, err := New(uuid.New().String(), shared.ProviderMTN, "233241234567", 0, "GHS", "api-user", "partner-1", "Acme")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)

		_, err = New(uuid.New().String(), shared.ProviderMTN, "233241234567", -100, "GHS", "api-user", "partner-1", "Acme")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})
}

func TestTransaction_Transitions(t *testing.T) {
	t.Run("InitiatedToPendingExternal", func(t *testing.T) {
		txn := newTestTransaction(t)
		assert.NoError(t, txn.TransitionTo(shared.TransactionStatusPendingExternal))
		assert.Nil(t, txn.CompletedAt)
	})

	t.Run("PendingToSuccessStampsCompletion", func(t *testing.T) {
		txn := newTestTransaction(t)
		require.NoError(t, txn.TransitionTo(shared.TransactionStatusPendingExternal))
		require.NoError(t, txn.TransitionTo(shared.TransactionStatusSuccess))

		require.NotNil(t, txn.CompletedAt)
		assert.WithinDuration(t, time.Now(), *txn.CompletedAt, time.Second)
	})

	t.Run("SuccessToRefunded", func(t *testing.T) {
		txn := newTestTransaction(t)
		require.NoError(t, txn.TransitionTo(shared.TransactionStatusPendingExternal))
		require.NoError(t, txn.TransitionTo(shared.TransactionStatusSuccess))
		assert.NoError(t, txn.TransitionTo(shared.TransactionStatusRefunded))
	})

	t.Run("TerminalStatusNeverRegresses", func(t *testing.T) {
		txn := newTestTransaction(t)
		require.NoError(t, txn.TransitionTo(shared.TransactionStatusPendingExternal))
		require.NoError(t, txn.TransitionTo(shared.TransactionStatusFailed))

		assert.ErrorIs(t, txn.TransitionTo(shared.TransactionStatusSuccess), ErrInvalidTransition)
		assert.ErrorIs(t, txn.TransitionTo(shared.TransactionStatusPendingExternal), ErrInvalidTransition)
		assert.ErrorIs(t, txn.TransitionTo(shared.TransactionStatusRefunded), ErrInvalidTransition)
	})

	t.Run("SelfTransitionRejected", func(t *testing.T) {
		txn := newTestTransaction(t)
		assert.False(t, txn.CanTransitionTo(shared.TransactionStatusInitiated))
	})

	t.Run("RefundOnlyFromSuccess", func(t *testing.T) {
		txn := newTestTransaction(t)
		assert.False(t, txn.CanTransitionTo(shared.TransactionStatusRefunded))
	})
}

func TestTransaction_MarkAccepted(t *testing.T) {
	txn := newTestTransaction(t)
	externalRef := uuid.New().String()

	require.NoError(t, txn.MarkAccepted(externalRef))

	assert.Equal(t, externalRef, txn.ExternalRef)
	assert.Equal(t, shared.TransactionStatusPendingExternal, txn.Status)
}

func TestTransaction_MarkFailed(t *testing.T) {
	txn := newTestTransaction(t)

	require.NoError(t, txn.MarkFailed("upstream responded 500: internal error", true))

	assert.Equal(t, shared.TransactionStatusFailed, txn.Status)
	assert.True(t, txn.Retryable)
	assert.NotEmpty(t, txn.Message)
	assert.NotNil(t, txn.CompletedAt)
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.False(t, shared.TransactionStatusInitiated.IsTerminal())
	assert.False(t, shared.TransactionStatusPendingExternal.IsTerminal())
	assert.True(t, shared.TransactionStatusSuccess.IsTerminal())
	assert.True(t, shared.TransactionStatusFailed.IsTerminal())
	assert.True(t, shared.TransactionStatusCancelled.IsTerminal())
	assert.True(t, shared.TransactionStatusRefunded.IsTerminal())
}
