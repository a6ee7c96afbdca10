// Package upstream implements the HTTP client for the telecom mobile-money
// gateway: OAuth token endpoints per product, request-to-pay, status query,
// account holder lookup, and the pre-approval (mandate) endpoints.
package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/momo-payment-gateway/internal/config"
)

// Products group the gateway's API surfaces. Each has its own token endpoint
// and subscription key.
const (
	ProductCollection   = "collection"
	ProductDisbursement = "disbursement"
)

const (
	headerSubscriptionKey   = "Ocp-Apim-Subscription-Key"
	headerReferenceID       = "X-Reference-Id"
	headerTargetEnvironment = "X-Target-Environment"
	headerCallbackURL       = "X-Callback-Url"
)

// Client talks to the upstream gateway. All calls are bounded by the
// configured per-call timeout.
type Client struct {
	baseURL           string
	targetEnvironment string
	httpClient        *http.Client
	logger            *slog.Logger
}

// NewClient creates a gateway client from configuration
func NewClient(logger *slog.Logger, cfg *config.GatewayConfig) *Client {
	return &Client{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		targetEnvironment: cfg.TargetEnvironment,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// TokenResponse is the gateway's OAuth answer. ExpiresIn is seconds and may
// be zero when the gateway omits it.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// CreateToken authenticates against the product's token endpoint using a
// Basic credential built from the subscription key and a fresh nonce.
func (c *Client) CreateToken(ctx context.Context, product, subscriptionKey string) (*TokenResponse, error) {
	url := fmt.Sprintf("%s/%s/token/", c.baseURL, product)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}

	nonce := uuid.New().String()
	credential := base64.StdEncoding.EncodeToString([]byte(subscriptionKey + ":" + nonce))
	req.Header.Set("Authorization", "Basic "+credential)
	req.Header.Set(headerSubscriptionKey, subscriptionKey)

	var tokenResp TokenResponse
	if err := c.do(req, &tokenResp); err != nil {
		return nil, err
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("gateway returned an empty access token for product %s", product)
	}
	return &tokenResp, nil
}

// Party identifies the payer on the gateway's wire format
type Party struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

// RequestToPayRequest is the collection request body. ExternalID is the
// caller-facing reference echoed back on callbacks.
type RequestToPayRequest struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExternalID   string `json:"externalId"`
	Payer        Party  `json:"payer"`
	PayerMessage string `json:"payerMessage,omitempty"`
	PayeeNote    string `json:"payeeNote,omitempty"`
}

// RequestToPay submits a collection. The reference ID is the upstream
// deduplication key: resubmitting with the same ID never creates a second
// payment.
func (c *Client) RequestToPay(ctx context.Context, bearer, subscriptionKey, referenceID, callbackURL string, body *RequestToPayRequest) error {
	url := fmt.Sprintf("%s/%s/v1_0/requesttopay", c.baseURL, ProductCollection)

	req, err := c.newJSONRequest(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	c.setBearerHeaders(req, bearer, subscriptionKey)
	req.Header.Set(headerReferenceID, referenceID)
	if callbackURL != "" {
		req.Header.Set(headerCallbackURL, callbackURL)
	}

	return c.do(req, nil)
}

// RequestToPayStatus is the gateway's view of a submitted collection
type RequestToPayStatus struct {
	Amount                 string `json:"amount"`
	Currency               string `json:"currency"`
	ExternalID             string `json:"externalId"`
	Payer                  Party  `json:"payer"`
	Status                 string `json:"status"`
	Reason                 string `json:"reason,omitempty"`
	FinancialTransactionID string `json:"financialTransactionId,omitempty"`
}

// GetRequestToPayStatus queries the status of a previously submitted collection
func (c *Client) GetRequestToPayStatus(ctx context.Context, bearer, subscriptionKey, referenceID string) (*RequestToPayStatus, error) {
	url := fmt.Sprintf("%s/%s/v1_0/requesttopay/%s", c.baseURL, ProductCollection, referenceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	c.setBearerHeaders(req, bearer, subscriptionKey)

	var status RequestToPayStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

type accountHolderResponse struct {
	Result bool `json:"result"`
}

// AccountHolderActive reports whether the MSISDN is an active account holder
func (c *Client) AccountHolderActive(ctx context.Context, bearer, subscriptionKey, msisdn string) (bool, error) {
	url := fmt.Sprintf("%s/%s/v1_0/accountholder/msisdn/%s/active", c.baseURL, ProductCollection, msisdn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build account holder request: %w", err)
	}
	c.setBearerHeaders(req, bearer, subscriptionKey)

	var resp accountHolderResponse
	if err := c.do(req, &resp); err != nil {
		return false, err
	}
	return resp.Result, nil
}

// PreApprovalRequest registers a recurring-payment mandate
type PreApprovalRequest struct {
	Payer         Party  `json:"payer"`
	PayerCurrency string `json:"payerCurrency"`
	PayerMessage  string `json:"payerMessage,omitempty"`
	ValidityTime  int64  `json:"validityTime"` // Seconds the mandate stays valid
	Frequency     string `json:"frequency"`
}

// PreApprovalStatus is the gateway's view of a mandate
type PreApprovalStatus struct {
	PreApprovalID     string `json:"preApprovalId"`
	Status            string `json:"status"`
	LastPaymentStatus string `json:"lastPaymentStatus,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

// CreatePreApproval registers a mandate under the caller-supplied reference ID
func (c *Client) CreatePreApproval(ctx context.Context, bearer, subscriptionKey, referenceID string, body *PreApprovalRequest) (*PreApprovalStatus, error) {
	url := fmt.Sprintf("%s/%s/v1_0/preapproval", c.baseURL, ProductCollection)

	req, err := c.newJSONRequest(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	c.setBearerHeaders(req, bearer, subscriptionKey)
	req.Header.Set(headerReferenceID, referenceID)

	if err := c.do(req, nil); err != nil {
		return nil, err
	}

	// The gateway keys the mandate by the reference we supplied.
	return &PreApprovalStatus{PreApprovalID: referenceID, Status: "PENDING"}, nil
}

// GetPreApprovalStatus queries a mandate by its upstream identifier
func (c *Client) GetPreApprovalStatus(ctx context.Context, bearer, subscriptionKey, preApprovalID string) (*PreApprovalStatus, error) {
	url := fmt.Sprintf("%s/%s/v1_0/preapproval/%s", c.baseURL, ProductCollection, preApprovalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pre-approval status request: %w", err)
	}
	c.setBearerHeaders(req, bearer, subscriptionKey)

	var status PreApprovalStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CancelPreApproval cancels a mandate by its upstream identifier
func (c *Client) CancelPreApproval(ctx context.Context, bearer, subscriptionKey, preApprovalID string) error {
	url := fmt.Sprintf("%s/%s/v1_0/preapproval/%s", c.baseURL, ProductCollection, preApprovalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build pre-approval cancel request: %w", err)
	}
	c.setBearerHeaders(req, bearer, subscriptionKey)

	return c.do(req, nil)
}

func (c *Client) newJSONRequest(ctx context.Context, method, url string, body interface{}) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// setBearerHeaders applies the post-token auth headers: Bearer token,
// subscription key, and the deployment's target environment.
func (c *Client) setBearerHeaders(req *http.Request, bearer, subscriptionKey string) {
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set(headerSubscriptionKey, subscriptionKey)
	req.Header.Set(headerTargetEnvironment, c.targetEnvironment)
}

// do executes the request, classifies failures, and decodes a JSON body into
// out when provided.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, req.Method, req.URL.Path)
		}
		c.logger.Error("Upstream request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Upstream returned non-success status",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
		)
		return &ResponseError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if readErr != nil {
		return fmt.Errorf("failed to read upstream response body: %w", readErr)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode upstream response: %w", err)
		}
	}
	return nil
}
