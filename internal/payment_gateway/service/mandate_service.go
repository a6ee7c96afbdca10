package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/momo-payment-gateway/internal/domain/mandate"
	"github.com/momo-payment-gateway/internal/domain/shared"
	"github.com/momo-payment-gateway/internal/platform/messaging/producers"
	"github.com/momo-payment-gateway/internal/provider"
)

// MandateServiceImpl implements the MandateService interface
type MandateServiceImpl struct {
	mandateRepo  mandate.Repository
	registry     *provider.Registry
	producer     producers.EventPublisher
	mandateTopic string
	logger       *slog.Logger
}

// NewMandateService creates a new mandate lifecycle service
func NewMandateService(
	logger *slog.Logger,
	mandateRepo mandate.Repository,
	registry *provider.Registry,
	producer producers.EventPublisher,
	mandateTopic string,
) MandateService {
	return &MandateServiceImpl{
		mandateRepo:  mandateRepo,
		registry:     registry,
		producer:     producer,
		mandateTopic: mandateTopic,
		logger:       logger,
	}
}

// Register persists the mandate and submits it upstream. The record is
// stored before the upstream call so a failed registration is visible as an
// INACTIVE mandate carrying the failure message.
func (s *MandateServiceImpl) Register(ctx context.Context, reg *MandateRegistration) (*mandate.Mandate, error) {
	registrar, err := s.registry.Mandate(reg.Provider)
	if err != nil {
		return nil, err
	}

	m, err := mandate.New(reg.ExternalRef, reg.Provider, reg.MSISDN, reg.ValidFrom, reg.ValidUntil, reg.Frequency)
	if err != nil {
		return nil, err
	}

	if err := s.mandateRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	result, callErr := registrar.CreateMandate(ctx, &provider.MandateRequest{
		ReferenceID: reg.ExternalRef,
		MSISDN:      reg.MSISDN,
		Currency:    reg.Currency,
		ValidFrom:   reg.ValidFrom,
		ValidUntil:  reg.ValidUntil,
		Frequency:   string(reg.Frequency),
		Message:     reg.Message,
	})
	if callErr != nil {
		s.logger.Error("Upstream mandate registration failed",
			"external_ref", reg.ExternalRef,
			"provider", string(reg.Provider),
			"error", callErr,
		)
		m.MarkRegistrationFailed(callErr.Error())
	} else {
		m.MarkRegistered(result.UpstreamID)
	}

	if err := s.mandateRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, m)

	s.logger.Info("Mandate registration completed",
		"external_ref", m.ExternalRef,
		"provider", string(m.Provider),
		"status", string(m.Status),
	)
	return m, callErr
}

// Get retrieves a mandate by its external reference
func (s *MandateServiceImpl) Get(ctx context.Context, externalRef string) (*mandate.Mandate, error) {
	return s.mandateRepo.GetByExternalRef(ctx, externalRef)
}

// Refresh queries upstream and folds the reported state into the stored
// mandate. Unregistered mandates are returned as stored.
func (s *MandateServiceImpl) Refresh(ctx context.Context, externalRef string) (*mandate.Mandate, error) {
	m, err := s.mandateRepo.GetByExternalRef(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	if m.UpstreamMandateID == "" {
		return m, nil
	}

	registrar, err := s.registry.Mandate(m.Provider)
	if err != nil {
		return nil, err
	}

	result, err := registrar.MandateStatus(ctx, m.UpstreamMandateID)
	if err != nil {
		s.logger.Error("Upstream mandate status query failed",
			"external_ref", externalRef,
			"error", err,
		)
		return nil, err
	}

	if result.Status == m.Status && result.LastPaymentStatus == m.LastPaymentStatus {
		return m, nil
	}

	m.ApplyUpstreamState(result.Status, result.LastPaymentStatus)
	if result.Reason != "" {
		m.Message = result.Reason
	}
	if err := s.mandateRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, m)
	return m, nil
}

// Cancel terminates the mandate upstream, then locally. Cancellation of a
// never-registered mandate is local only.
func (s *MandateServiceImpl) Cancel(ctx context.Context, externalRef string) (*mandate.Mandate, error) {
	m, err := s.mandateRepo.GetByExternalRef(ctx, externalRef)
	if err != nil {
		return nil, err
	}

	if m.Status == shared.MandateStatusCancelled {
		return m, nil
	}

	if m.UpstreamMandateID != "" {
		registrar, err := s.registry.Mandate(m.Provider)
		if err != nil {
			return nil, err
		}
		if err := registrar.CancelMandate(ctx, m.UpstreamMandateID); err != nil {
			s.logger.Error("Upstream mandate cancellation failed",
				"external_ref", externalRef,
				"error", err,
			)
			return nil, err
		}
	}

	m.ApplyUpstreamState(shared.MandateStatusCancelled, m.LastPaymentStatus)
	if err := s.mandateRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, m)

	s.logger.Info("Mandate cancelled", "external_ref", externalRef)
	return m, nil
}

// publishEvent emits a mandate state change. Best-effort, the stored mandate
// is the source of truth.
func (s *MandateServiceImpl) publishEvent(ctx context.Context, m *mandate.Mandate) {
	event := &shared.MandateEvent{
		Type:        shared.EventMandateStateChanged,
		ExternalRef: m.ExternalRef,
		Provider:    m.Provider,
		Status:      m.Status,
		Message:     m.Message,
		Timestamp:   time.Now(),
	}
	if err := s.producer.Publish(ctx, s.mandateTopic, m.ExternalRef, event); err != nil {
		s.logger.Error("Failed to publish mandate event",
			"external_ref", m.ExternalRef,
			"error", err,
		)
	}
}
