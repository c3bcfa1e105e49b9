package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/gateway"
	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/agendly/agendly-backend/internal/repository"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
	"github.com/google/uuid"
)

// Webhook ingestion outcomes (also the metrics label values)
const (
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeRecorded  = "recorded"
	WebhookOutcomeDropped   = "dropped"
)

// WebhookService turns untrusted, at-least-once provider notifications
// into lifecycle transitions. Unresolvable events are logged and dropped
// rather than failed, because a non-2xx acknowledgment would only trigger
// unbounded provider re-delivery of events we already know we cannot use.
type WebhookService struct {
	paymentRepo *repository.PaymentRepository
	subRepo     *repository.SubscriptionRepository
	subSvc      *SubscriptionService
	gw          gateway.BillingGateway
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	paymentRepo *repository.PaymentRepository,
	subRepo *repository.SubscriptionRepository,
	subSvc *SubscriptionService,
	gw gateway.BillingGateway,
) *WebhookService {
	return &WebhookService{
		paymentRepo: paymentRepo,
		subRepo:     subRepo,
		subSvc:      subSvc,
		gw:          gw,
	}
}

// ProcessNotification handles one provider notification. It never returns
// an error for business-level failures; the endpoint acknowledges with 200
// regardless, and the returned outcome string is for logs and metrics.
func (s *WebhookService) ProcessNotification(ctx context.Context, payload *domain.WebhookPayload) string {
	log := pkglogger.GetLogger()

	if payload.Type != "payment" {
		log.Debug().Str("type", payload.Type).Msg("non-payment webhook event, acknowledged")
		return s.count(WebhookOutcomeIgnored)
	}

	externalID := payload.Data.ID
	if externalID == "" {
		log.Warn().Msg("payment webhook missing payment id, acknowledged")
		return s.count(WebhookOutcomeDropped)
	}

	detail, err := s.gw.FetchPayment(ctx, externalID)
	if err != nil {
		log.Error().Err(err).Str("payment_id", externalID).Msg("fetch payment failed, dropping event")
		return s.count(WebhookOutcomeDropped)
	}

	sub, err := s.subRepo.FindByID(ctx, detail.ExternalReference)
	if err != nil || sub == nil {
		// Dropped, not retried: failing here would cause a provider retry storm
		log.Warn().
			Str("payment_id", externalID).
			Str("external_reference", detail.ExternalReference).
			Msg("no subscription for payment, dropping event")
		return s.count(WebhookOutcomeDropped)
	}

	existing, err := s.paymentRepo.FindByProviderPaymentID(ctx, domain.PaymentProviderMercadoPago, externalID)
	if err != nil {
		log.Error().Err(err).Str("payment_id", externalID).Msg("idempotency lookup failed, dropping event")
		return s.count(WebhookOutcomeDropped)
	}

	outcome := WebhookOutcomeRecorded
	if existing != nil {
		outcome = WebhookOutcomeDuplicate
	} else {
		if err := s.recordPayment(ctx, sub, externalID, detail); err != nil {
			log.Error().Err(err).Str("payment_id", externalID).Msg("record payment failed, dropping event")
			return s.count(WebhookOutcomeDropped)
		}
	}

	// Dispatch on the provider status. Transitions are idempotent, so a
	// replayed "approved" at most refreshes next_billing_at.
	switch detail.Status {
	case domain.ProviderStatusApproved:
		if err := s.subSvc.ActivateSubscription(ctx, sub); err != nil {
			log.Error().Err(err).Str("subscription_id", sub.ID).Msg("activation failed")
			return s.count(WebhookOutcomeDropped)
		}
	case domain.ProviderStatusRejected, domain.ProviderStatusCancelled:
		if err := s.subSvc.CancelSubscription(ctx, sub, "payment_failed"); err != nil {
			log.Error().Err(err).Str("subscription_id", sub.ID).Msg("cancellation failed")
			return s.count(WebhookOutcomeDropped)
		}
	default:
		// pending, in_process etc: evidence recorded, no transition
	}

	log.Info().
		Str("payment_id", externalID).
		Str("status", detail.Status).
		Str("subscription_id", sub.ID).
		Str("outcome", outcome).
		Msg("payment webhook processed")
	return s.count(outcome)
}

func (s *WebhookService) recordPayment(ctx context.Context, sub *domain.Subscription, externalID string, detail *gateway.PaymentDetail) error {
	metadata, _ := json.Marshal(map[string]string{ //nolint:errcheck // map[string]string always marshals
		"external_reference": detail.ExternalReference,
	})

	currency := detail.Currency
	if currency == "" {
		currency = sub.Currency
	}
	paymentDate := detail.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := &domain.Payment{
		ID:                uuid.New().String(),
		TenantID:          sub.TenantID,
		SubscriptionID:    &sub.ID,
		Provider:          domain.PaymentProviderMercadoPago,
		ProviderPaymentID: externalID,
		Amount:            detail.Amount,
		Currency:          currency,
		Status:            detail.Status,
		PaymentMethod:     detail.PaymentMethod,
		PaymentDate:       paymentDate,
		Metadata:          string(metadata),
	}
	return s.paymentRepo.Create(ctx, payment)
}

func (s *WebhookService) count(outcome string) string {
	middleware.CountWebhookEvent(outcome)
	return outcome
}
