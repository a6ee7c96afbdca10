package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/momo-payment-gateway/internal/domain/settlement"
	"github.com/momo-payment-gateway/internal/platform/persistence"
)

// SettlementRepository implements the settlement.Repository interface for
// PostgreSQL. Aggregation is a single insert-or-add statement, never an
// application-level read-then-write.
type SettlementRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSettlementRepository creates a new PostgreSQL settlement repository
func NewSettlementRepository(logger *slog.Logger, db *persistence.PostgresDB) settlement.Repository {
	return &SettlementRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing the aggregate
// write to commit together with the status update that justified it.
func (r *SettlementRepository) WithTx(tx pgx.Tx) settlement.Repository {
	return &SettlementRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Upsert atomically folds one successful transaction into the partner's
// running totals. Concurrent callbacks for the same partner serialize on the
// row inside the database, so no update is ever lost.
func (r *SettlementRepository) Upsert(ctx context.Context, partnerID, partnerName string, amount int64) error {
	query := `
		INSERT INTO partner_summaries (partner_id, partner_name, total_amount, total_count, updated_at)
		VALUES ($1, $2, $3, 1, NOW())
		ON CONFLICT (partner_id) DO UPDATE
		SET total_amount = partner_summaries.total_amount + EXCLUDED.total_amount,
			total_count = partner_summaries.total_count + 1,
			partner_name = EXCLUDED.partner_name,
			updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query, partnerID, partnerName, amount)
	if err != nil {
		r.logger.Error("Failed to upsert partner summary", "partner_id", partnerID, "error", err)
		return fmt.Errorf("failed to upsert partner summary: %w", err)
	}

	return nil
}

// GetByPartnerID retrieves a partner's running settlement totals
func (r *SettlementRepository) GetByPartnerID(ctx context.Context, partnerID string) (*settlement.PartnerSummary, error) {
	query := `
		SELECT partner_id, partner_name, total_amount, total_count, updated_at
		FROM partner_summaries
		WHERE partner_id = $1
	`

	var s settlement.PartnerSummary
	err := r.querier.QueryRow(ctx, query, partnerID).Scan(
		&s.PartnerID,
		&s.PartnerName,
		&s.TotalAmount,
		&s.TotalCount,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, settlement.ErrSummaryNotFound{PartnerID: partnerID}
		}
		r.logger.Error("Failed to get partner summary", "partner_id", partnerID, "error", err)
		return nil, fmt.Errorf("failed to get partner summary: %w", err)
	}

	return &s, nil
}
