// Package whitelist implements the HTTP client for the whitelist/subscription
// lookup collaborator, which answers whether a destination number is
// authorized for an account.
package whitelist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/momo-payment-gateway/internal/config"
)

// Client queries the whitelist service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a whitelist lookup client from configuration
func NewClient(logger *slog.Logger, cfg *config.WhitelistConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type authorizationResponse struct {
	Authorized bool `json:"authorized"`
}

// IsAuthorized reports whether the destination number appears in any
// whitelist bound to the account.
func (c *Client) IsAuthorized(ctx context.Context, accountID, msisdn string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%s/whitelist/%s",
		c.baseURL, url.PathEscape(accountID), url.PathEscape(msisdn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build whitelist request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Whitelist lookup failed", "account_id", accountID, "error", err)
		return false, fmt.Errorf("whitelist lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, fmt.Errorf("whitelist service responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result authorizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode whitelist response: %w", err)
	}
	return result.Authorized, nil
}
