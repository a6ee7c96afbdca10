// Package mtn adapts the MTN mobile-money gateway to the provider capability
// interfaces. It is the only adapter with mandate (pre-approval) support.
package mtn

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/momo-payment-gateway/internal/config"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/platform/upstream"
	"github.com/momo-payment-gateway/internal/provider"
)

const partyIDTypeMSISDN = "MSISDN"

// Adapter implements provider.CollectionProvider and provider.MandateProvider
// on top of the upstream gateway client.
type Adapter struct {
	client          *upstream.Client
	tokens          provider.TokenSource
	subscriptionKey string
	logger          *slog.Logger
}

// NewAdapter creates the MTN adapter
func NewAdapter(logger *slog.Logger, client *upstream.Client, tokens provider.TokenSource, cfg *config.GatewayConfig) *Adapter {
	return &Adapter{
		client:          client,
		tokens:          tokens,
		subscriptionKey: cfg.CollectionSubscriptionKey,
		logger:          logger,
	}
}

// Interface conformance checks
var (
	_ provider.CollectionProvider = (*Adapter)(nil)
	_ provider.MandateProvider    = (*Adapter)(nil)
)

// RequestToPay submits a collection, passing the reference ID as the
// upstream deduplication key.
func (a *Adapter) RequestToPay(ctx context.Context, req *provider.CollectionRequest) error {
	tok, err := a.tokens.GetToken(ctx, shared.TokenTypeCollection)
	if err != nil {
		return err
	}

	body := &upstream.RequestToPayRequest{
		Amount:       formatAmount(req.Amount),
		Currency:     req.Currency,
		ExternalID:   req.ReferenceID,
		Payer:        upstream.Party{PartyIDType: partyIDTypeMSISDN, PartyID: req.MSISDN},
		PayerMessage: req.PayerMessage,
		PayeeNote:    req.PayeeNote,
	}

	return a.client.RequestToPay(ctx, tok.Value, a.subscriptionKey, req.ReferenceID, req.CallbackURL, body)
}

// CollectionStatus queries the upstream status of a submitted collection
func (a *Adapter) CollectionStatus(ctx context.Context, referenceID string) (*provider.StatusResult, error) {
	tok, err := a.tokens.GetToken(ctx, shared.TokenTypeCollection)
	if err != nil {
		return nil, err
	}

	status, err := a.client.GetRequestToPayStatus(ctx, tok.Value, a.subscriptionKey, referenceID)
	if err != nil {
		return nil, err
	}

	return &provider.StatusResult{
		Status:                 status.Status,
		Reason:                 status.Reason,
		FinancialTransactionID: status.FinancialTransactionID,
		PayerPartyIDType:       status.Payer.PartyIDType,
		PayerPartyID:           status.Payer.PartyID,
	}, nil
}

// AccountActive reports whether the MSISDN is an active MTN account holder
func (a *Adapter) AccountActive(ctx context.Context, msisdn string) (bool, error) {
	tok, err := a.tokens.GetToken(ctx, shared.TokenTypeCollection)
	if err != nil {
		return false, err
	}
	return a.client.AccountHolderActive(ctx, tok.Value, a.subscriptionKey, msisdn)
}

// CreateMandate registers a pre-approval under the caller-supplied reference
func (a *Adapter) CreateMandate(ctx context.Context, req *provider.MandateRequest) (*provider.MandateResult, error) {
	tok, err := a.tokens.GetToken(ctx, shared.TokenTypeCollection)
	if err != nil {
		return nil, err
	}

	body := &upstream.PreApprovalRequest{
		Payer:         upstream.Party{PartyIDType: partyIDTypeMSISDN, PartyID: req.MSISDN},
		PayerCurrency: req.Currency,
		PayerMessage:  req.Message,
		ValidityTime:  int64(req.ValidUntil.Sub(req.ValidFrom) / time.Second),
		Frequency:     req.Frequency,
	}

	resp, err := a.client.CreatePreApproval(ctx, tok.Value, a.subscriptionKey, req.ReferenceID, body)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.PreApprovalID == "" {
		return nil, fmt.Errorf("gateway returned no pre-approval identifier for %s", req.ReferenceID)
	}

	return &provider.MandateResult{
		UpstreamID: resp.PreApprovalID,
		Status:     mapMandateStatus(resp.Status),
		Reason:     resp.Reason,
	}, nil
}

// MandateStatus queries a pre-approval by its upstream identifier
func (a *Adapter) MandateStatus(ctx context.Context, upstreamID string) (*provider.MandateResult, error) {
	tok, err := a.tokens.GetToken(ctx, shared.TokenTypeCollection)
	if err != nil {
		return nil, err
	}

	status, err := a.client.GetPreApprovalStatus(ctx, tok.Value, a.subscriptionKey, upstreamID)
	if err != nil {
		return nil, err
	}

	return &provider.MandateResult{
		UpstreamID:        status.PreApprovalID,
		Status:            mapMandateStatus(status.Status),
		LastPaymentStatus: status.LastPaymentStatus,
		Reason:            status.Reason,
	}, nil
}

// CancelMandate cancels a pre-approval by its upstream identifier
func (a *Adapter) CancelMandate(ctx context.Context, upstreamID string) error {
	tok, err := a.tokens.GetToken(ctx, shared.TokenTypeCollection)
	if err != nil {
		return err
	}
	return a.client.CancelPreApproval(ctx, tok.Value, a.subscriptionKey, upstreamID)
}

// formatAmount renders minor units as the gateway's decimal string
func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// mapMandateStatus folds the gateway's pre-approval vocabulary into the
// internal enum. Unknown values map to PENDING rather than guessing a
// terminal state.
func mapMandateStatus(s string) shared.MandateStatus {
	switch strings.ToUpper(s) {
	case "CREATED", "PENDING":
		return shared.MandateStatusPending
	case "APPROVED", "ACTIVE", "SUCCESSFUL":
		return shared.MandateStatusActive
	case "CANCELLED", "REJECTED", "TERMINATED":
		return shared.MandateStatusCancelled
	case "EXPIRED":
		return shared.MandateStatusExpired
	default:
		return shared.MandateStatusPending
	}
}
