package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/token"
	"github.com/momo-payment-gateway/internal/platform/persistence"
)

// TokenRepository implements the token.Repository interface for PostgreSQL.
// The history is append-only: refreshes insert, nothing ever updates or
// deletes, which keeps reads race-free against the scheduler.
type TokenRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTokenRepository creates a new PostgreSQL access-token repository
func NewTokenRepository(logger *slog.Logger, db *persistence.PostgresDB) token.Repository {
	return &TokenRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Append inserts a freshly issued token row
func (r *TokenRepository) Append(ctx context.Context, tok *token.AccessToken) error {
	query := `
		INSERT INTO access_tokens (token_type, token_value, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		tok.Type,
		tok.Value,
		tok.IssuedAt,
		tok.ExpiresAt,
	).Scan(&tok.ID)
	if err != nil {
		r.logger.Error("Failed to append access token", "token_type", string(tok.Type), "error", err)
		return fmt.Errorf("failed to append access token: %w", err)
	}

	return nil
}

// LatestValid returns the most recently issued token of the type whose
// expiry is still in the future, or ErrTokenUnavailable.
func (r *TokenRepository) LatestValid(ctx context.Context, tokenType shared.TokenType, now time.Time) (*token.AccessToken, error) {
	query := `
		SELECT id, token_type, token_value, issued_at, expires_at
		FROM access_tokens
		WHERE token_type = $1 AND expires_at > $2
		ORDER BY issued_at DESC
		LIMIT 1
	`

	var tok token.AccessToken
	err := r.querier.QueryRow(ctx, query, tokenType, now).Scan(
		&tok.ID,
		&tok.Type,
		&tok.Value,
		&tok.IssuedAt,
		&tok.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, token.ErrTokenUnavailable{Type: tokenType}
		}
		r.logger.Error("Failed to get latest valid token", "token_type", string(tokenType), "error", err)
		return nil, fmt.Errorf("failed to get latest valid token: %w", err)
	}

	return &tok, nil
}
