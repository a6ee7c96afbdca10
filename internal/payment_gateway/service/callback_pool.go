package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

// reconcileTimeout bounds one background reconciliation, detached from the
// already-answered HTTP request.
const reconcileTimeout = 30 * time.Second

// CallbackPool runs reconciliations on a bounded worker pool. The webhook
// handler acknowledges the sender immediately; the pool applies the delivery
// in the background so a slow database never stalls the gateway's retries.
type CallbackPool struct {
	reconciler ReconciliationService
	pool       *ants.Pool
	logger     *slog.Logger
}

// NewCallbackPool creates a bounded reconciliation worker pool
func NewCallbackPool(logger *slog.Logger, reconciler ReconciliationService, size int) (*CallbackPool, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	return &CallbackPool{
		reconciler: reconciler,
		pool:       pool,
		logger:     logger,
	}, nil
}

// Submit queues one delivery for reconciliation. When the pool cannot accept
// the task the caller gets the error and may fall back to inline handling.
func (p *CallbackPool) Submit(delivery *CallbackDelivery) error {
	return p.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		if _, err := p.reconciler.Reconcile(ctx, delivery); err != nil {
			p.logger.Error("Background reconciliation failed",
				"external_ref", delivery.ExternalRef,
				"error", err,
			)
		}
	})
}

// Release stops the pool after running tasks finish
func (p *CallbackPool) Release() {
	p.pool.Release()
}
