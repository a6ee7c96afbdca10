package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/momo-payment-gateway/internal/domain/otp"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/platform/persistence"
)

// OTPRepository implements the otp.Repository interface for PostgreSQL
type OTPRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOTPRepository creates a new PostgreSQL one-time-code repository
func NewOTPRepository(logger *slog.Logger, db *persistence.PostgresDB) otp.Repository {
	return &OTPRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a freshly issued code
func (r *OTPRepository) Create(ctx context.Context, code *otp.OneTimeCode) error {
	query := `
		INSERT INTO one_time_codes (code, destination, channel, purpose, used, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		code.Code,
		code.Destination,
		code.Channel,
		code.Purpose,
		code.Used,
		code.CreatedAt,
		code.ExpiresAt,
	).Scan(&code.ID)
	if err != nil {
		r.logger.Error("Failed to create one-time code", "destination", code.Destination, "error", err)
		return fmt.Errorf("failed to create one-time code: %w", err)
	}

	return nil
}

// FindActive returns the most recent unused, unexpired code matching the
// destination, code value, channel, and purpose. Matching on purpose here
// means a verify for the wrong purpose never consumes the code.
// ErrCodeNotFound is deliberately uniform across expired, wrong, and
// consumed codes.
func (r *OTPRepository) FindActive(ctx context.Context, destination, code string, channel shared.OTPChannel, purpose shared.OTPPurpose, now time.Time) (*otp.OneTimeCode, error) {
	query := `
		SELECT id, code, destination, channel, purpose, used, created_at, expires_at
		FROM one_time_codes
		WHERE destination = $1 AND code = $2 AND channel = $3 AND purpose = $4 AND used = FALSE AND expires_at > $5
		ORDER BY created_at DESC
		LIMIT 1
	`

	var c otp.OneTimeCode
	err := r.querier.QueryRow(ctx, query, destination, code, channel, purpose, now).Scan(
		&c.ID,
		&c.Code,
		&c.Destination,
		&c.Channel,
		&c.Purpose,
		&c.Used,
		&c.CreatedAt,
		&c.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, otp.ErrCodeNotFound{}
		}
		r.logger.Error("Failed to find active one-time code", "destination", destination, "error", err)
		return nil, fmt.Errorf("failed to find active one-time code: %w", err)
	}

	return &c, nil
}

// MarkUsed consumes a code. The used-flag guard makes consumption
// first-winner under concurrent verifies.
func (r *OTPRepository) MarkUsed(ctx context.Context, id int64) error {
	query := `
		UPDATE one_time_codes
		SET used = TRUE
		WHERE id = $1 AND used = FALSE
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to mark one-time code used", "id", id, "error", err)
		return fmt.Errorf("failed to mark one-time code used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return otp.ErrCodeNotFound{}
	}

	return nil
}

// DeleteExpired sweeps codes past their expiry. Housekeeping only; expiry is
// already enforced on the read path.
func (r *OTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM one_time_codes
		WHERE expires_at <= $1
	`

	result, err := r.querier.Exec(ctx, query, now)
	if err != nil {
		r.logger.Error("Failed to delete expired one-time codes", "error", err)
		return 0, fmt.Errorf("failed to delete expired one-time codes: %w", err)
	}

	return result.RowsAffected(), nil
}
