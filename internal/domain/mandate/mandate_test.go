package mandate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	externalRef := uuid.New().String()
	validFrom := time.Now()
	validUntil := validFrom.AddDate(1, 0, 0)

	t.Run("Success", func(t *testing.T) {
		m, err := New(externalRef, shared.ProviderMTN, "233241234567", validFrom, validUntil, FrequencyMonthly)

		require.NoError(t, err)
		assert.Equal(t, externalRef, m.ExternalRef)
		assert.Equal(t, shared.MandateStatusInactive, m.Status)
		assert.Empty(t, m.UpstreamMandateID)
	})

	t.Run("EmptyDestination", func(t *testing.T) {
		_, err := New(externalRef, shared.ProviderMTN, "", validFrom, validUntil, FrequencyMonthly)
		assert.ErrorIs(t, err, ErrEmptyDestination)
	})

	t.Run("InvertedValidityWindow", func(t *testing.T) {
		_, err := New(externalRef, shared.ProviderMTN, "233241234567", validUntil, validFrom, FrequencyMonthly)
		assert.ErrorIs(t, err, ErrInvalidValidity)
	})

	t.Run("ZeroLengthValidityWindow", func(t *testing.T) {
		_, err := New(externalRef, shared.ProviderMTN, "233241234567", validFrom, validFrom, FrequencyMonthly)
		assert.ErrorIs(t, err, ErrInvalidValidity)
	})

	t.Run("UnknownFrequency", func(t *testing.T) {
		_, err := New(externalRef, shared.ProviderMTN, "233241234567", validFrom, validUntil, Frequency("HOURLY"))
		assert.ErrorIs(t, err, ErrUnknownFrequency)
	})
}

func TestMandate_MarkRegistered(t *testing.T) {
	m, err := New(uuid.New().String(), shared.ProviderMTN, "233241234567", time.Now(), time.Now().AddDate(1, 0, 0), FrequencyWeekly)
	require.NoError(t, err)

	m.MarkRegistered("pa-100")

	assert.Equal(t, shared.MandateStatusPending, m.Status)
	assert.Equal(t, "pa-100", m.UpstreamMandateID)
}

func TestMandate_MarkRegistrationFailed(t *testing.T) {
	m, err := New(uuid.New().String(), shared.ProviderMTN, "233241234567", time.Now(), time.Now().AddDate(1, 0, 0), FrequencyDaily)
	require.NoError(t, err)

	m.MarkRegistrationFailed("upstream rejected")

	assert.Equal(t, shared.MandateStatusInactive, m.Status)
	assert.Equal(t, "upstream rejected", m.Message)
	assert.Empty(t, m.UpstreamMandateID)
}

func TestMandate_ApplyUpstreamState(t *testing.T) {
	m, err := New(uuid.New().String(), shared.ProviderMTN, "233241234567", time.Now(), time.Now().AddDate(1, 0, 0), FrequencyMonthly)
	require.NoError(t, err)
	m.MarkRegistered("pa-100")

	m.ApplyUpstreamState(shared.MandateStatusActive, "SUCCESSFUL")

	assert.Equal(t, shared.MandateStatusActive, m.Status)
	assert.Equal(t, "SUCCESSFUL", m.LastPaymentStatus)
}
