package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/momo-payment-gateway/internal/domain/callback"
	"github.com/momo-payment-gateway/internal/domain/mandate"
	"github.com/momo-payment-gateway/internal/domain/otp"
	"github.com/momo-payment-gateway/internal/domain/settlement"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/domain/token"
	"github.com/momo-payment-gateway/internal/domain/transaction"
	"github.com/momo-payment-gateway/internal/provider"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByInternalRef(ctx context.Context, internalRef string) (*transaction.Transaction, error) {
	args := m.Called(ctx, internalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByExternalRef(ctx context.Context, externalRef string) (*transaction.Transaction, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) LockByInternalRef(ctx context.Context, internalRef string) (*transaction.Transaction, error) {
	args := m.Called(ctx, internalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) LockByExternalRef(ctx context.Context, externalRef string) (*transaction.Transaction, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return m
}

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) Upsert(ctx context.Context, partnerID, partnerName string, amount int64) error {
	args := m.Called(ctx, partnerID, partnerName, amount)
	return args.Error(0)
}

func (m *MockSettlementRepository) GetByPartnerID(ctx context.Context, partnerID string) (*settlement.PartnerSummary, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.PartnerSummary), args.Error(1)
}

func (m *MockSettlementRepository) WithTx(tx pgx.Tx) settlement.Repository {
	return m
}

type MockMandateRepository struct {
	mock.Mock
}

func (m *MockMandateRepository) Create(ctx context.Context, man *mandate.Mandate) error {
	args := m.Called(ctx, man)
	return args.Error(0)
}

func (m *MockMandateRepository) GetByExternalRef(ctx context.Context, externalRef string) (*mandate.Mandate, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mandate.Mandate), args.Error(1)
}

func (m *MockMandateRepository) Update(ctx context.Context, man *mandate.Mandate) error {
	args := m.Called(ctx, man)
	return args.Error(0)
}

func (m *MockMandateRepository) WithTx(tx pgx.Tx) mandate.Repository {
	return m
}

type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Create(ctx context.Context, code *otp.OneTimeCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockOTPRepository) FindActive(ctx context.Context, destination, code string, channel shared.OTPChannel, purpose shared.OTPPurpose, now time.Time) (*otp.OneTimeCode, error) {
	args := m.Called(ctx, destination, code, channel, purpose, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*otp.OneTimeCode), args.Error(1)
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Append(ctx context.Context, tok *token.AccessToken) error {
	args := m.Called(ctx, tok)
	return args.Error(0)
}

func (m *MockTokenRepository) LatestValid(ctx context.Context, tokenType shared.TokenType, now time.Time) (*token.AccessToken, error) {
	args := m.Called(ctx, tokenType, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.AccessToken), args.Error(1)
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Append(ctx context.Context, event *callback.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockJournal) GetByExternalRef(ctx context.Context, externalRef string, limit int) ([]*callback.Event, error) {
	args := m.Called(ctx, externalRef, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*callback.Event), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockWhitelist struct {
	mock.Mock
}

func (m *MockWhitelist) IsAuthorized(ctx context.Context, accountID, msisdn string) (bool, error) {
	args := m.Called(ctx, accountID, msisdn)
	return args.Bool(0), args.Error(1)
}

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Reconcile(ctx context.Context, delivery *CallbackDelivery) (string, error) {
	args := m.Called(ctx, delivery)
	return args.String(0), args.Error(1)
}

// fakeTxExecutor runs the function directly; repository mocks ignore the tx
type fakeTxExecutor struct {
	err error
}

func (f *fakeTxExecutor) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	return f.err
}

type MockCollectionProvider struct {
	mock.Mock
}

func (m *MockCollectionProvider) RequestToPay(ctx context.Context, req *provider.CollectionRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCollectionProvider) CollectionStatus(ctx context.Context, referenceID string) (*provider.StatusResult, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StatusResult), args.Error(1)
}

func (m *MockCollectionProvider) AccountActive(ctx context.Context, msisdn string) (bool, error) {
	args := m.Called(ctx, msisdn)
	return args.Bool(0), args.Error(1)
}

// MockMandateProvider adds the mandate capability on top of collections
type MockMandateProvider struct {
	MockCollectionProvider
}

func (m *MockMandateProvider) CreateMandate(ctx context.Context, req *provider.MandateRequest) (*provider.MandateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.MandateResult), args.Error(1)
}

func (m *MockMandateProvider) MandateStatus(ctx context.Context, upstreamID string) (*provider.MandateResult, error) {
	args := m.Called(ctx, upstreamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.MandateResult), args.Error(1)
}

func (m *MockMandateProvider) CancelMandate(ctx context.Context, upstreamID string) error {
	args := m.Called(ctx, upstreamID)
	return args.Error(0)
}
