package service

import (
	"context"
	"log/slog"

	"github.com/momo-payment-gateway/internal/domain/settlement"
)

// SettlementServiceImpl implements the SettlementService interface
type SettlementServiceImpl struct {
	settlementRepo settlement.Repository
	logger         *slog.Logger
}

// NewSettlementService creates a new settlement query service
func NewSettlementService(logger *slog.Logger, settlementRepo settlement.Repository) SettlementService {
	return &SettlementServiceImpl{
		settlementRepo: settlementRepo,
		logger:         logger,
	}
}

// GetPartnerSummary retrieves a partner's running settlement totals
func (s *SettlementServiceImpl) GetPartnerSummary(ctx context.Context, partnerID string) (*settlement.PartnerSummary, error) {
	return s.settlementRepo.GetByPartnerID(ctx, partnerID)
}
