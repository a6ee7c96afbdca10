package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/transaction"
	"github.com/momo-payment-gateway/internal/platform/messaging/producers"
	"github.com/momo-payment-gateway/internal/platform/upstream"
	"github.com/momo-payment-gateway/internal/provider"
)

// InitiationServiceImpl implements the InitiationService interface
type InitiationServiceImpl struct {
	db                TxExecutor
	txnRepo           transaction.Repository
	registry          *provider.Registry
	whitelist         WhitelistLookup
	producer          producers.EventPublisher
	transactionTopic  string
	targetEnvironment string
	logger            *slog.Logger
}

// NewInitiationService creates a new collection initiation service
func NewInitiationService(
	logger *slog.Logger,
	db TxExecutor,
	txnRepo transaction.Repository,
	registry *provider.Registry,
	whitelist WhitelistLookup,
	producer producers.EventPublisher,
	transactionTopic string,
	targetEnvironment string,
) InitiationService {
	return &InitiationServiceImpl{
		db:                db,
		txnRepo:           txnRepo,
		registry:          registry,
		whitelist:         whitelist,
		producer:          producer,
		transactionTopic:  transactionTopic,
		targetEnvironment: targetEnvironment,
		logger:            logger,
	}
}

// Initiate starts a collection. The internal reference is the idempotency
// boundary: a replayed key returns the stored record without touching the
// upstream gateway again.
func (s *InitiationServiceImpl) Initiate(ctx context.Context, req *InitiationRequest) (*transaction.Transaction, bool, error) {
	if req.TargetEnvironment != s.targetEnvironment {
		s.logger.Warn("Rejected initiation for wrong target environment",
			"requested", req.TargetEnvironment,
			"serving", s.targetEnvironment,
		)
		return nil, false, shared.ErrEnvironmentMismatch
	}
	if _, err := uuid.Parse(req.InternalRef); err != nil {
		return nil, false, shared.ErrInvalidIdempotencyKey
	}
	if !validCallbackURL(req.CallbackURL) {
		return nil, false, shared.ErrInvalidCallbackURL
	}

	existing, err := s.txnRepo.GetByInternalRef(ctx, req.InternalRef)
	if err == nil {
		s.logger.Info("Replaying existing transaction for idempotency key",
			"internal_ref", req.InternalRef,
			"status", string(existing.Status),
		)
		return existing, true, nil
	}
	if !errors.Is(err, transaction.ErrTransactionNotFound{}) {
		return nil, false, err
	}

	collector, err := s.registry.Collection(req.Provider)
	if err != nil {
		return nil, false, err
	}

	authorized, err := s.whitelist.IsAuthorized(ctx, req.PartnerID, req.MSISDN)
	if err != nil {
		s.logger.Error("Whitelist lookup failed during initiation",
			"internal_ref", req.InternalRef,
			"partner_id", req.PartnerID,
			"error", err,
		)
		return nil, false, err
	}
	if !authorized {
		return nil, false, shared.ErrNotWhitelisted
	}

	txn, err := transaction.New(req.InternalRef, req.Provider, req.MSISDN, req.Amount, req.Currency,
		req.InitiatedBy, req.PartnerID, req.PartnerName)
	if err != nil {
		return nil, false, err
	}

	// The idempotency key doubles as the upstream deduplication reference.
	// Setting it before the row is created means a callback can match the
	// transaction even when it arrives ahead of the finalizing write.
	txn.ExternalRef = req.InternalRef

	if err := s.txnRepo.Create(ctx, txn); err != nil {
		// A concurrent initiation with the same key won the insert; replay its record.
		if errors.Is(err, transaction.ErrDuplicateInternalRef{}) {
			winner, getErr := s.txnRepo.GetByInternalRef(ctx, req.InternalRef)
			if getErr != nil {
				return nil, false, getErr
			}
			return winner, true, nil
		}
		return nil, false, err
	}

	s.publishEvent(ctx, shared.EventTransactionCreated, txn)

	callErr := collector.RequestToPay(ctx, &provider.CollectionRequest{
		ReferenceID:  txn.ExternalRef,
		MSISDN:       req.MSISDN,
		Amount:       req.Amount,
		Currency:     req.Currency,
		CallbackURL:  req.CallbackURL,
		PayerMessage: req.PayerMessage,
		PayeeNote:    req.PayeeNote,
	})

	final, wrote, err := s.finalize(ctx, txn.InternalRef, callErr)
	if err != nil {
		s.logger.Error("Failed to record upstream outcome",
			"internal_ref", txn.InternalRef,
			"error", err,
		)
		return nil, false, err
	}

	if wrote {
		s.publishEvent(ctx, shared.EventTransactionStatusChanged, final)
	}

	s.logger.Info("Collection initiation completed",
		"internal_ref", final.InternalRef,
		"external_ref", final.ExternalRef,
		"provider", string(final.Provider),
		"status", string(final.Status),
	)
	return final, false, nil
}

// finalize folds the upstream answer into the row under a row lock. A fast
// gateway can deliver the callback before this write; the lock serializes
// the two, and a row the reconciler already moved past INITIATED is returned
// untouched. Returns whether this call wrote the row.
func (s *InitiationServiceImpl) finalize(ctx context.Context, internalRef string, callErr error) (*transaction.Transaction, bool, error) {
	var (
		txn   *transaction.Transaction
		wrote bool
	)
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.txnRepo.WithTx(tx)

		current, err := repo.LockByInternalRef(ctx, internalRef)
		if err != nil {
			return err
		}
		if current.Status != shared.TransactionStatusInitiated {
			txn = current
			return nil
		}

		if callErr != nil {
			s.recordUpstreamFailure(current, callErr)
		} else if err := current.MarkAccepted(current.ExternalRef); err != nil {
			return err
		}

		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		txn = current
		wrote = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return txn, wrote, nil
}

// GetByInternalRef retrieves a transaction by its idempotency key
func (s *InitiationServiceImpl) GetByInternalRef(ctx context.Context, internalRef string) (*transaction.Transaction, error) {
	return s.txnRepo.GetByInternalRef(ctx, internalRef)
}

// QueryUpstreamStatus passes the stored external reference to the provider's
// status endpoint. The stored record is left untouched; callbacks remain the
// only path that mutates transaction state.
func (s *InitiationServiceImpl) QueryUpstreamStatus(ctx context.Context, internalRef string) (*transaction.Transaction, *provider.StatusResult, error) {
	txn, err := s.txnRepo.GetByInternalRef(ctx, internalRef)
	if err != nil {
		return nil, nil, err
	}
	if txn.ExternalRef == "" {
		return nil, nil, shared.ErrNoUpstreamReference
	}

	collector, err := s.registry.Collection(txn.Provider)
	if err != nil {
		return nil, nil, err
	}

	result, err := collector.CollectionStatus(ctx, txn.ExternalRef)
	if err != nil {
		s.logger.Error("Upstream status query failed",
			"internal_ref", internalRef,
			"external_ref", txn.ExternalRef,
			"error", err,
		)
		return nil, nil, err
	}
	return txn, result, nil
}

// recordUpstreamFailure folds an upstream call failure into the transaction.
// 4xx rejections are final; timeouts and 5xx answers may succeed on a retry
// with a fresh idempotency key.
func (s *InitiationServiceImpl) recordUpstreamFailure(txn *transaction.Transaction, callErr error) {
	retryable := upstream.IsTransient(callErr)
	if !retryable && !upstream.IsClientError(callErr) {
		// Unclassified failures are treated as transient rather than
		// permanently burning the caller's key.
		retryable = true
	}

	if err := txn.MarkFailed(callErr.Error(), retryable); err != nil {
		s.logger.Error("Failed to mark transaction failed", "internal_ref", txn.InternalRef, "error", err)
	}
}

// publishEvent emits a transaction event. Publishing is best-effort: the
// stored record is the source of truth and a bus hiccup must not fail the
// payment.
func (s *InitiationServiceImpl) publishEvent(ctx context.Context, eventType string, txn *transaction.Transaction) {
	event := &shared.TransactionEvent{
		Type:        eventType,
		InternalRef: txn.InternalRef,
		ExternalRef: txn.ExternalRef,
		Provider:    txn.Provider,
		Status:      txn.Status,
		Message:     txn.Message,
		PartnerID:   txn.PartnerID,
		Amount:      txn.Amount,
		Currency:    txn.Currency,
		Timestamp:   time.Now(),
	}
	if err := s.producer.Publish(ctx, s.transactionTopic, txn.InternalRef, event); err != nil {
		s.logger.Error("Failed to publish transaction event",
			"type", eventType,
			"internal_ref", txn.InternalRef,
			"error", err,
		)
	}
}

// validCallbackURL accepts only absolute http or https URLs
func validCallbackURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
