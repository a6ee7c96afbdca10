package settlement

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// PartnerSummary is the running settlement aggregate for one partner. It is
// only ever written through the repository's atomic upsert.
type PartnerSummary struct {
	PartnerID   string    `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	TotalAmount int64     `json:"total_amount"` // Minor units
	TotalCount  int64     `json:"total_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository aggregates per-partner settlement totals. Upsert must be a
// single insert-or-add statement so concurrent callbacks for the same
// partner cannot lose updates.
type Repository interface {
	Upsert(ctx context.Context, partnerID, partnerName string, amount int64) error
	GetByPartnerID(ctx context.Context, partnerID string) (*PartnerSummary, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrSummaryNotFound indicates no settlement has been recorded for a partner
type ErrSummaryNotFound struct {
	PartnerID string
}

func (e ErrSummaryNotFound) Error() string {
	return "partner summary not found: " + e.PartnerID
}
