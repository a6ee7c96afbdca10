// Package scheduler runs the background loops of the payment core: the
// token refresher and the expired-code sweeper. Both own their cadence;
// nothing in the request path ever triggers them inline.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/momo-payment-gateway/internal/payment_gateway/service"
)

// TokenRefresher keeps upstream bearer tokens fresh on a fixed cadence
type TokenRefresher struct {
	tokens   service.TokenManager
	interval time.Duration
	logger   *slog.Logger
}

// NewTokenRefresher creates a new token refresh loop
func NewTokenRefresher(logger *slog.Logger, tokens service.TokenManager, interval time.Duration) *TokenRefresher {
	return &TokenRefresher{
		tokens:   tokens,
		interval: interval,
		logger:   logger,
	}
}

// Start refreshes immediately, then on every tick until the context is
// canceled. A failed refresh is retried on the next tick; the previous
// token stays in service until it expires.
func (r *TokenRefresher) Start(ctx context.Context) {
	r.logger.Info("Starting token refresher", "interval", r.interval.String())

	if err := r.tokens.RefreshAll(ctx); err != nil {
		r.logger.Error("Initial token refresh failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Token refresher stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := r.tokens.RefreshAll(ctx); err != nil {
				r.logger.Error("Scheduled token refresh failed", "error", err)
			}
		}
	}
}
