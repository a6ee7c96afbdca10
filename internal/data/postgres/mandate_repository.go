package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momo-payment-gateway/internal/domain/mandate"
	"github.com/momo-payment-gateway/internal/platform/persistence"
)

// MandateRepository implements the mandate.Repository interface for PostgreSQL
type MandateRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewMandateRepository creates a new PostgreSQL mandate repository
func NewMandateRepository(logger *slog.Logger, db *persistence.PostgresDB) mandate.Repository {
	return &MandateRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *MandateRepository) WithTx(tx pgx.Tx) mandate.Repository {
	return &MandateRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new mandate, always in its INACTIVE initial state
func (r *MandateRepository) Create(ctx context.Context, m *mandate.Mandate) error {
	query := `
		INSERT INTO mandates (external_ref, msisdn, provider, status, last_payment_status,
			valid_from, valid_until, frequency, message, upstream_mandate_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		m.ExternalRef,
		m.MSISDN,
		m.Provider,
		m.Status,
		m.LastPaymentStatus,
		m.ValidFrom,
		m.ValidUntil,
		m.Frequency,
		m.Message,
		m.UpstreamMandateID,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return mandate.ErrDuplicateMandate{Ref: m.ExternalRef}
		}
		r.logger.Error("Failed to create mandate", "external_ref", m.ExternalRef, "error", err)
		return fmt.Errorf("failed to create mandate: %w", err)
	}

	return nil
}

// GetByExternalRef retrieves a mandate by its external reference
func (r *MandateRepository) GetByExternalRef(ctx context.Context, externalRef string) (*mandate.Mandate, error) {
	query := `
		SELECT external_ref, msisdn, provider, status, last_payment_status,
			valid_from, valid_until, frequency, message, upstream_mandate_id, created_at, updated_at
		FROM mandates
		WHERE external_ref = $1
	`

	var m mandate.Mandate
	err := r.querier.QueryRow(ctx, query, externalRef).Scan(
		&m.ExternalRef,
		&m.MSISDN,
		&m.Provider,
		&m.Status,
		&m.LastPaymentStatus,
		&m.ValidFrom,
		&m.ValidUntil,
		&m.Frequency,
		&m.Message,
		&m.UpstreamMandateID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mandate.ErrMandateNotFound{Ref: externalRef}
		}
		r.logger.Error("Failed to get mandate", "external_ref", externalRef, "error", err)
		return nil, fmt.Errorf("failed to get mandate: %w", err)
	}

	return &m, nil
}

// Update writes the mutable mandate fields
func (r *MandateRepository) Update(ctx context.Context, m *mandate.Mandate) error {
	query := `
		UPDATE mandates
		SET status = $1, last_payment_status = $2, message = $3, upstream_mandate_id = $4, updated_at = $5
		WHERE external_ref = $6
	`

	result, err := r.querier.Exec(ctx, query,
		m.Status,
		m.LastPaymentStatus,
		m.Message,
		m.UpstreamMandateID,
		m.UpdatedAt,
		m.ExternalRef,
	)
	if err != nil {
		r.logger.Error("Failed to update mandate", "external_ref", m.ExternalRef, "error", err)
		return fmt.Errorf("failed to update mandate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return mandate.ErrMandateNotFound{Ref: m.ExternalRef}
	}

	return nil
}
