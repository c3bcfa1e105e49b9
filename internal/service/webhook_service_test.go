package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/gateway"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway serves canned payment details keyed by provider payment ID.
type fakeGateway struct {
	payments map[string]*gateway.PaymentDetail
	fetches  int
}

func (f *fakeGateway) CreateCheckout(_ context.Context, sub *domain.Subscription, _ *domain.Tenant) (*gateway.Checkout, error) {
	return &gateway.Checkout{CheckoutURL: "https://pay.test/" + sub.ID, PreferenceID: "pref-" + sub.ID}, nil
}

func (f *fakeGateway) FetchPayment(_ context.Context, externalPaymentID string) (*gateway.PaymentDetail, error) {
	f.fetches++
	detail, ok := f.payments[externalPaymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", externalPaymentID)
	}
	return detail, nil
}

func newWebhookService(t *testing.T, db *gorm.DB, gw gateway.BillingGateway) *WebhookService {
	t.Helper()
	paymentRepo := repository.NewPaymentRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	subSvc := newSubscriptionService(t, db)
	return NewWebhookService(paymentRepo, subRepo, subSvc, gw)
}

func paymentPayload(id string) *domain.WebhookPayload {
	return &domain.WebhookPayload{Type: "payment", Data: domain.WebhookData{ID: id}}
}

func createPendingSubscription(t *testing.T, db *gorm.DB, trialEnd time.Time) *domain.Subscription {
	t.Helper()
	svc := newSubscriptionService(t, db)
	tenant := createTestTenant(t, db, trialEnd)
	sub, err := svc.CreateSubscription(context.Background(), tenant, domain.PlanBasic, domain.PaymentMethodPix)
	require.NoError(t, err)
	return sub
}

func countPayments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Count(&count).Error)
	return count
}

func TestProcessNotification_NonPaymentIgnored(t *testing.T) {
	db := setupTestDB(t)
	svc := newWebhookService(t, db, &fakeGateway{})

	outcome := svc.ProcessNotification(context.Background(), &domain.WebhookPayload{Type: "merchant_order"})
	assert.Equal(t, WebhookOutcomeIgnored, outcome)
	assert.Equal(t, int64(0), countPayments(t, db))
}

func TestProcessNotification_MissingPaymentIDDropped(t *testing.T) {
	db := setupTestDB(t)
	svc := newWebhookService(t, db, &fakeGateway{})

	outcome := svc.ProcessNotification(context.Background(), &domain.WebhookPayload{Type: "payment"})
	assert.Equal(t, WebhookOutcomeDropped, outcome)
}

func TestProcessNotification_UnknownReferenceDropped(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{payments: map[string]*gateway.PaymentDetail{
		"mp-1": {ExternalReference: "no-such-subscription", Status: domain.ProviderStatusApproved},
	}}
	svc := newWebhookService(t, db, gw)

	outcome := svc.ProcessNotification(context.Background(), paymentPayload("mp-1"))
	assert.Equal(t, WebhookOutcomeDropped, outcome)
	assert.Equal(t, int64(0), countPayments(t, db))
}

func TestProcessNotification_ApprovedActivates(t *testing.T) {
	db := setupTestDB(t)
	sub := createPendingSubscription(t, db, time.Now().AddDate(0, 0, 10))
	gw := &fakeGateway{payments: map[string]*gateway.PaymentDetail{
		"mp-100": {
			ExternalReference: sub.ID,
			Amount:            49.90,
			Currency:          "BRL",
			Status:            domain.ProviderStatusApproved,
			PaymentMethod:     "pix",
			PaymentDate:       time.Now(),
		},
	}}
	svc := newWebhookService(t, db, gw)

	outcome := svc.ProcessNotification(context.Background(), paymentPayload("mp-100"))
	assert.Equal(t, WebhookOutcomeRecorded, outcome)
	assert.Equal(t, int64(1), countPayments(t, db))

	var reloaded domain.Subscription
	require.NoError(t, db.Where("id = ?", sub.ID).First(&reloaded).Error)
	assert.Equal(t, domain.SubscriptionStatusActive, reloaded.Status)
	assert.NotNil(t, reloaded.NextBillingAt)

	tenant := reloadTenant(t, db, sub.TenantID)
	assert.Equal(t, domain.TenantStatusActive, tenant.Status)
}

func TestProcessNotification_ReplayIsSafe(t *testing.T) {
	db := setupTestDB(t)
	sub := createPendingSubscription(t, db, time.Now().AddDate(0, 0, 10))
	gw := &fakeGateway{payments: map[string]*gateway.PaymentDetail{
		"mp-200": {
			ExternalReference: sub.ID,
			Amount:            49.90,
			Currency:          "BRL",
			Status:            domain.ProviderStatusApproved,
			PaymentMethod:     "boleto",
			PaymentDate:       time.Now(),
		},
	}}
	svc := newWebhookService(t, db, gw)

	first := svc.ProcessNotification(context.Background(), paymentPayload("mp-200"))
	second := svc.ProcessNotification(context.Background(), paymentPayload("mp-200"))

	assert.Equal(t, WebhookOutcomeRecorded, first)
	assert.Equal(t, WebhookOutcomeDuplicate, second)
	// At-least-once delivery, exactly one ledger row
	assert.Equal(t, int64(1), countPayments(t, db))

	var reloaded domain.Subscription
	require.NoError(t, db.Where("id = ?", sub.ID).First(&reloaded).Error)
	assert.Equal(t, domain.SubscriptionStatusActive, reloaded.Status)
}

func TestProcessNotification_RejectedCancels(t *testing.T) {
	db := setupTestDB(t)
	// Trial already over, so the failed payment cascades to the tenant
	sub := createPendingSubscription(t, db, time.Now().AddDate(0, 0, -1))
	gw := &fakeGateway{payments: map[string]*gateway.PaymentDetail{
		"mp-300": {
			ExternalReference: sub.ID,
			Amount:            49.90,
			Currency:          "BRL",
			Status:            domain.ProviderStatusRejected,
			PaymentMethod:     "credit_card",
			PaymentDate:       time.Now(),
		},
	}}
	svc := newWebhookService(t, db, gw)

	outcome := svc.ProcessNotification(context.Background(), paymentPayload("mp-300"))
	assert.Equal(t, WebhookOutcomeRecorded, outcome)

	var reloaded domain.Subscription
	require.NoError(t, db.Where("id = ?", sub.ID).First(&reloaded).Error)
	assert.Equal(t, domain.SubscriptionStatusCanceled, reloaded.Status)

	tenant := reloadTenant(t, db, sub.TenantID)
	assert.Equal(t, domain.TenantStatusInactive, tenant.Status)
}

func TestProcessNotification_PendingRecordsWithoutTransition(t *testing.T) {
	db := setupTestDB(t)
	sub := createPendingSubscription(t, db, time.Now().AddDate(0, 0, 10))
	gw := &fakeGateway{payments: map[string]*gateway.PaymentDetail{
		"mp-400": {
			ExternalReference: sub.ID,
			Amount:            49.90,
			Currency:          "BRL",
			Status:            domain.ProviderStatusPending,
			PaymentMethod:     "boleto",
			PaymentDate:       time.Now(),
		},
	}}
	svc := newWebhookService(t, db, gw)

	outcome := svc.ProcessNotification(context.Background(), paymentPayload("mp-400"))
	assert.Equal(t, WebhookOutcomeRecorded, outcome)
	assert.Equal(t, int64(1), countPayments(t, db))

	var reloaded domain.Subscription
	require.NoError(t, db.Where("id = ?", sub.ID).First(&reloaded).Error)
	assert.Equal(t, domain.SubscriptionStatusPending, reloaded.Status)
}

func TestProcessNotification_RecordedPaymentFields(t *testing.T) {
	db := setupTestDB(t)
	sub := createPendingSubscription(t, db, time.Now().AddDate(0, 0, 10))
	paid := time.Now().Truncate(time.Second)
	gw := &fakeGateway{payments: map[string]*gateway.PaymentDetail{
		"mp-500": {
			ExternalReference: sub.ID,
			Amount:            99.90,
			Currency:          "BRL",
			Status:            domain.ProviderStatusApproved,
			PaymentMethod:     "pix",
			PaymentDate:       paid,
		},
	}}
	svc := newWebhookService(t, db, gw)

	svc.ProcessNotification(context.Background(), paymentPayload("mp-500"))

	var payment domain.Payment
	require.NoError(t, db.Where("provider_payment_id = ?", "mp-500").First(&payment).Error)
	assert.Equal(t, sub.TenantID, payment.TenantID)
	require.NotNil(t, payment.SubscriptionID)
	assert.Equal(t, sub.ID, *payment.SubscriptionID)
	assert.Equal(t, domain.PaymentProviderMercadoPago, payment.Provider)
	assert.Equal(t, 99.90, payment.Amount)
	assert.Equal(t, domain.ProviderStatusApproved, payment.Status)
	assert.Equal(t, "pix", payment.PaymentMethod)
}
