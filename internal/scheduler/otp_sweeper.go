package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/momo-payment-gateway/internal/payment_gateway/service"
)

// OTPSweeper removes expired one-time codes on a fixed cadence. Expiry is
// already enforced on the verify path; the sweep only keeps the table small.
type OTPSweeper struct {
	codes    service.OTPService
	interval time.Duration
	logger   *slog.Logger
}

// NewOTPSweeper creates a new expired-code sweep loop
func NewOTPSweeper(logger *slog.Logger, codes service.OTPService, interval time.Duration) *OTPSweeper {
	return &OTPSweeper{
		codes:    codes,
		interval: interval,
		logger:   logger,
	}
}

// Start sweeps on every tick until the context is canceled
func (s *OTPSweeper) Start(ctx context.Context) {
	s.logger.Info("Starting one-time-code sweeper", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("One-time-code sweeper stopping due to context cancellation.")
			return
		case <-ticker.C:
			if _, err := s.codes.SweepExpired(ctx); err != nil {
				s.logger.Error("Expired code sweep failed", "error", err)
			}
		}
	}
}
