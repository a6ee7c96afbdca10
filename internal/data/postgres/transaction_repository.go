// Package postgres provides PostgreSQL implementations of the domain
// repositories. All status mutations run against row-locked reads so the
// initiator's terminal write and the callback reconciler cannot silently
// overwrite one another.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momo-payment-gateway/internal/domain/transaction"
	"github.com/momo-payment-gateway/internal/platform/persistence"
)

const transactionColumns = `internal_ref, external_ref, collection_ref, provider, msisdn, amount, currency,
		initiated_by, partner_id, partner_name, status, message, retryable,
		payer_party_id_type, payer_party_id, financial_transaction_id, initiated_at, completed_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing atomic operations
// across multiple repository calls.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new transaction. The internal reference is the idempotency
// key: a unique violation maps to ErrDuplicateInternalRef so the initiator
// can answer with a conflict instead of resubmitting upstream.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.InternalRef,
		nullable(txn.ExternalRef),
		nullable(txn.CollectionRef),
		txn.Provider,
		txn.MSISDN,
		txn.Amount,
		txn.Currency,
		txn.InitiatedBy,
		txn.PartnerID,
		txn.PartnerName,
		txn.Status,
		txn.Message,
		txn.Retryable,
		txn.PayerPartyIDType,
		txn.PayerPartyID,
		txn.FinancialTransactionID,
		txn.InitiatedAt,
		txn.CompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return transaction.ErrDuplicateInternalRef{Ref: txn.InternalRef}
		}
		r.logger.Error("Failed to create transaction", "internal_ref", txn.InternalRef, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByInternalRef retrieves a transaction by its idempotency key
func (r *TransactionRepository) GetByInternalRef(ctx context.Context, internalRef string) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE internal_ref = $1
	`
	return r.scanOne(ctx, query, internalRef)
}

// GetByExternalRef retrieves a transaction by the upstream-assigned reference
func (r *TransactionRepository) GetByExternalRef(ctx context.Context, externalRef string) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE external_ref = $1
	`
	return r.scanOne(ctx, query, externalRef)
}

// LockByInternalRef obtains a row lock on the transaction. Use within a
// database transaction for an atomic read-modify-write.
func (r *TransactionRepository) LockByInternalRef(ctx context.Context, internalRef string) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE internal_ref = $1
		FOR UPDATE
	`
	return r.scanOne(ctx, query, internalRef)
}

// LockByExternalRef obtains a row lock keyed by the upstream reference
func (r *TransactionRepository) LockByExternalRef(ctx context.Context, externalRef string) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE external_ref = $1
		FOR UPDATE
	`
	return r.scanOne(ctx, query, externalRef)
}

// Update writes the mutable transaction fields. The internal reference is
// immutable and is only ever used as the key.
func (r *TransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET external_ref = $1, collection_ref = $2, status = $3, message = $4, retryable = $5,
			payer_party_id_type = $6, payer_party_id = $7, financial_transaction_id = $8, completed_at = $9
		WHERE internal_ref = $10
	`

	result, err := r.querier.Exec(ctx, query,
		nullable(txn.ExternalRef),
		nullable(txn.CollectionRef),
		txn.Status,
		txn.Message,
		txn.Retryable,
		txn.PayerPartyIDType,
		txn.PayerPartyID,
		txn.FinancialTransactionID,
		txn.CompletedAt,
		txn.InternalRef,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "internal_ref", txn.InternalRef, "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{Ref: txn.InternalRef}
	}

	return nil
}

func (r *TransactionRepository) scanOne(ctx context.Context, query string, ref string) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	var externalRef, collectionRef *string
	err := r.querier.QueryRow(ctx, query, ref).Scan(
		&txn.InternalRef,
		&externalRef,
		&collectionRef,
		&txn.Provider,
		&txn.MSISDN,
		&txn.Amount,
		&txn.Currency,
		&txn.InitiatedBy,
		&txn.PartnerID,
		&txn.PartnerName,
		&txn.Status,
		&txn.Message,
		&txn.Retryable,
		&txn.PayerPartyIDType,
		&txn.PayerPartyID,
		&txn.FinancialTransactionID,
		&txn.InitiatedAt,
		&txn.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{Ref: ref}
		}
		r.logger.Error("Failed to get transaction", "ref", ref, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if externalRef != nil {
		txn.ExternalRef = *externalRef
	}
	if collectionRef != nil {
		txn.CollectionRef = *collectionRef
	}
	return &txn, nil
}

// nullable maps an empty string to NULL so partial unique indexes on
// optional references behave.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
