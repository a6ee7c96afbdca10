package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/momo-payment-gateway/internal/config"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/token"
	"github.com/momo-payment-gateway/internal/platform/upstream"
)

// TokenManagerImpl implements the TokenManager interface. Each token type
// has its own atomic slot, so reads never block and never observe a torn
// token during refresh. Every refreshed token is also appended to the
// persistent history, which serves as the warm-start source after a restart.
type TokenManagerImpl struct {
	client     *upstream.Client
	repo       token.Repository
	cfg        *config.GatewayConfig
	logger     *slog.Logger
	collection atomic.Pointer[token.AccessToken]
	disburse   atomic.Pointer[token.AccessToken]
}

// NewTokenManager creates a new token manager
func NewTokenManager(logger *slog.Logger, client *upstream.Client, repo token.Repository, cfg *config.GatewayConfig) *TokenManagerImpl {
	return &TokenManagerImpl{
		client: client,
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// GetToken returns a currently valid token for the type. The cache is tried
// first; on a miss the latest valid persisted token is loaded and cached.
// A refresh is never triggered here.
func (m *TokenManagerImpl) GetToken(ctx context.Context, tokenType shared.TokenType) (*token.AccessToken, error) {
	slot, err := m.slot(tokenType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if tok := slot.Load(); tok.Valid(now) {
		return tok, nil
	}

	tok, err := m.repo.LatestValid(ctx, tokenType, now)
	if err != nil {
		if errors.Is(err, token.ErrTokenUnavailable{}) {
			return nil, token.ErrTokenUnavailable{Type: tokenType}
		}
		m.logger.Error("Failed to load persisted access token", "token_type", tokenType, "error", err)
		return nil, err
	}

	slot.Store(tok)
	return tok, nil
}

// RefreshAll refreshes every token type. Each type is attempted even when an
// earlier one fails; the first error is returned.
func (m *TokenManagerImpl) RefreshAll(ctx context.Context) error {
	var firstErr error
	for _, tokenType := range []shared.TokenType{shared.TokenTypeCollection, shared.TokenTypeDisbursement} {
		if err := m.refresh(ctx, tokenType); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Reset drops the in-memory cache. The next read falls back to the
// persistent history.
func (m *TokenManagerImpl) Reset() {
	m.collection.Store(nil)
	m.disburse.Store(nil)
}

// refresh obtains a fresh token for the type, persists it, and swaps it into
// the cache. The previous token stays readable until the swap.
func (m *TokenManagerImpl) refresh(ctx context.Context, tokenType shared.TokenType) error {
	slot, err := m.slot(tokenType)
	if err != nil {
		return err
	}

	product, subscriptionKey := m.product(tokenType)
	resp, err := m.client.CreateToken(ctx, product, subscriptionKey)
	if err != nil {
		m.logger.Error("Failed to refresh access token", "token_type", tokenType, "error", err)
		return err
	}

	ttl := m.cfg.TokenDefaultTTL
	if resp.ExpiresIn > 0 {
		ttl = time.Duration(resp.ExpiresIn) * time.Second
	}

	now := time.Now()
	tok := &token.AccessToken{
		Type:      tokenType,
		Value:     resp.AccessToken,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := m.repo.Append(ctx, tok); err != nil {
		m.logger.Error("Failed to persist refreshed access token", "token_type", tokenType, "error", err)
		return err
	}

	slot.Store(tok)
	m.logger.Info("Refreshed access token",
		"token_type", tokenType,
		"expires_at", tok.ExpiresAt,
	)
	return nil
}

func (m *TokenManagerImpl) slot(tokenType shared.TokenType) (*atomic.Pointer[token.AccessToken], error) {
	switch tokenType {
	case shared.TokenTypeCollection:
		return &m.collection, nil
	case shared.TokenTypeDisbursement:
		return &m.disburse, nil
	default:
		return nil, token.ErrTokenUnavailable{Type: tokenType}
	}
}

func (m *TokenManagerImpl) product(tokenType shared.TokenType) (string, string) {
	if tokenType == shared.TokenTypeDisbursement {
		return upstream.ProductDisbursement, m.cfg.DisbursementSubscriptionKey
	}
	return upstream.ProductCollection, m.cfg.CollectionSubscriptionKey
}
