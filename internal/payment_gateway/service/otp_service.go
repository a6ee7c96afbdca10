package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/momo-payment-gateway/internal/domain/otp"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/platform/messaging/producers"
)

// OTPServiceImpl implements the OTPService interface
type OTPServiceImpl struct {
	otpRepo  otp.Repository
	producer producers.EventPublisher
	otpTopic string
	ttl      time.Duration
	logger   *slog.Logger
}

// NewOTPService creates a new one-time-code service
func NewOTPService(logger *slog.Logger, otpRepo otp.Repository, producer producers.EventPublisher, otpTopic string, ttl time.Duration) OTPService {
	return &OTPServiceImpl{
		otpRepo:  otpRepo,
		producer: producer,
		otpTopic: otpTopic,
		ttl:      ttl,
		logger:   logger,
	}
}

// Issue generates a code, persists it, and hands it to the notification
// collaborator via the event bus. The code value never appears in the
// issuing call's response or in logs.
func (s *OTPServiceImpl) Issue(ctx context.Context, destination string, channel shared.OTPChannel, purpose shared.OTPPurpose) (*otp.OneTimeCode, error) {
	code, err := otp.New(destination, channel, purpose, s.ttl)
	if err != nil {
		return nil, err
	}

	if err := s.otpRepo.Create(ctx, code); err != nil {
		return nil, err
	}

	event := &shared.CodeIssuedEvent{
		Type:        shared.EventCodeIssued,
		Destination: code.Destination,
		Channel:     code.Channel,
		Purpose:     code.Purpose,
		Code:        code.Code,
		ExpiresAt:   code.ExpiresAt,
		Timestamp:   time.Now(),
	}
	if err := s.producer.Publish(ctx, s.otpTopic, code.Destination, event); err != nil {
		// Without delivery the code is useless to the caller. Surface the
		// failure; the orphaned row expires on its own.
		s.logger.Error("Failed to publish code issued event",
			"destination", code.Destination,
			"channel", string(code.Channel),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("One-time code issued",
		"destination", code.Destination,
		"channel", string(code.Channel),
		"purpose", string(code.Purpose),
		"expires_at", code.ExpiresAt,
	)
	return code, nil
}

// Verify consumes a matching active code issued for the given purpose.
// Consumption is first-winner: of two concurrent verifies with the same
// code, exactly one succeeds. The error is uniform across wrong, expired,
// already-used, and wrong-purpose codes.
func (s *OTPServiceImpl) Verify(ctx context.Context, destination, code string, channel shared.OTPChannel, purpose shared.OTPPurpose) (*otp.OneTimeCode, error) {
	found, err := s.otpRepo.FindActive(ctx, destination, code, channel, purpose, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.otpRepo.MarkUsed(ctx, found.ID); err != nil {
		return nil, err
	}
	found.Used = true

	s.logger.Info("One-time code verified",
		"destination", destination,
		"channel", string(channel),
		"purpose", string(found.Purpose),
	)
	return found, nil
}

// SweepExpired removes codes past their expiry
func (s *OTPServiceImpl) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := s.otpRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Swept expired one-time codes", "removed", removed)
	}
	return removed, nil
}
