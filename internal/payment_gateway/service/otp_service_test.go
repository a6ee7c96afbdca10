package service

import (
	"context"
	"testing"
	"time"

	"github.com/momo-payment-gateway/internal/domain/otp"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOTPTopic = "otp_events"

func newOTPFixture() (OTPService, *MockOTPRepository, *MockEventPublisher) {
	repo := new(MockOTPRepository)
	producer := new(MockEventPublisher)
	svc := NewOTPService(newTestLogger(), repo, producer, testOTPTopic, 5*time.Minute)
	return svc, repo, producer
}

func TestOTPService_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, producer := newOTPFixture()

		repo.On("Create", ctx, mock.AnythingOfType("*otp.OneTimeCode")).Return(nil).Once()
		producer.On("Publish", ctx, testOTPTopic, "233241234567", mock.MatchedBy(func(e *shared.CodeIssuedEvent) bool {
			return e.Type == shared.EventCodeIssued && len(e.Code) == 6
		})).Return(nil).Once()

		code, err := svc.Issue(ctx, "233241234567", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel)

		require.NoError(t, err)
		assert.Len(t, code.Code, 6)
		assert.Equal(t, shared.OTPPurposeMandateCancel, code.Purpose)
		repo.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("PublishFailureSurfaces", func(t *testing.T) {
		svc, repo, producer := newOTPFixture()

		repo.On("Create", ctx, mock.AnythingOfType("*otp.OneTimeCode")).Return(nil).Once()
		producer.On("Publish", ctx, testOTPTopic, mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := svc.Issue(ctx, "233241234567", shared.OTPChannelSMS, shared.OTPPurposeDisbursement)

		assert.Error(t, err)
	})

	t.Run("EmptyDestination", func(t *testing.T) {
		svc, repo, _ := newOTPFixture()

		_, err := svc.Issue(ctx, "", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel)

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOTPService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("ConsumesActiveCode", func(t *testing.T) {
		svc, repo, _ := newOTPFixture()
		stored := &otp.OneTimeCode{
			ID:          7,
			Destination: "233241234567",
			Code:        "481902",
			Channel:     shared.OTPChannelSMS,
			Purpose:     shared.OTPPurposeMandateCancel,
			ExpiresAt:   time.Now().Add(time.Minute),
		}

		repo.On("FindActive", ctx, "233241234567", "481902", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel, mock.AnythingOfType("time.Time")).Return(stored, nil).Once()
		repo.On("MarkUsed", ctx, int64(7)).Return(nil).Once()

		code, err := svc.Verify(ctx, "233241234567", "481902", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel)

		require.NoError(t, err)
		assert.True(t, code.Used)
		repo.AssertExpectations(t)
	})

	t.Run("WrongCodeGetsUniformError", func(t *testing.T) {
		svc, repo, _ := newOTPFixture()

		repo.On("FindActive", ctx, "233241234567", "000000", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel, mock.AnythingOfType("time.Time")).Return(nil, otp.ErrCodeNotFound{}).Once()

		_, err := svc.Verify(ctx, "233241234567", "000000", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel)

		assert.ErrorIs(t, err, otp.ErrCodeNotFound{})
	})

	t.Run("WrongPurposeDoesNotConsumeCode", func(t *testing.T) {
		svc, repo, _ := newOTPFixture()

		// A code issued for disbursement approval must not match a
		// mandate-cancel verify, and must stay unconsumed for its
		// real purpose.
		repo.On("FindActive", ctx, "233241234567", "481902", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel, mock.AnythingOfType("time.Time")).Return(nil, otp.ErrCodeNotFound{}).Once()

		_, err := svc.Verify(ctx, "233241234567", "481902", shared.OTPChannelSMS, shared.OTPPurposeMandateCancel)

		assert.ErrorIs(t, err, otp.ErrCodeNotFound{})
		repo.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentConsumeLosesRace", func(t *testing.T) {
		svc, repo, _ := newOTPFixture()
		stored := &otp.OneTimeCode{
			ID:          9,
			Destination: "233241234567",
			Code:        "481902",
			Channel:     shared.OTPChannelSMS,
			ExpiresAt:   time.Now().Add(time.Minute),
		}

		repo.On("FindActive", ctx, "233241234567", "481902", shared.OTPChannelSMS, shared.OTPPurposeDisbursement, mock.AnythingOfType("time.Time")).Return(stored, nil).Once()
		repo.On("MarkUsed", ctx, int64(9)).Return(otp.ErrCodeNotFound{}).Once()

		_, err := svc.Verify(ctx, "233241234567", "481902", shared.OTPChannelSMS, shared.OTPPurposeDisbursement)

		assert.ErrorIs(t, err, otp.ErrCodeNotFound{})
	})
}

func TestOTPService_SweepExpired(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newOTPFixture()

	repo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(3), nil).Once()

	removed, err := svc.SweepExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	repo.AssertExpectations(t)
}
