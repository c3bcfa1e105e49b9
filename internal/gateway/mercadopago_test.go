package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubscription() *domain.Subscription {
	return &domain.Subscription{
		ID:       "sub-1",
		TenantID: "tenant-1",
		Plan:     domain.PlanBasic,
		Amount:   49.90,
		Currency: "BRL",
	}
}

func TestMercadoPago_NoCredentials(t *testing.T) {
	gw := NewMercadoPagoGateway("", "", "")

	_, err := gw.CreateCheckout(context.Background(), testSubscription(), &domain.Tenant{})
	assert.ErrorIs(t, err, common.ErrGatewayUnavailable)

	_, err = gw.FetchPayment(context.Background(), "mp-1")
	assert.ErrorIs(t, err, common.ErrGatewayUnavailable)
}

func TestMercadoPago_CreateCheckout(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout/preferences" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         "pref-123",
			"init_point": "https://mercadopago.test/checkout/pref-123",
		})
	}))
	defer srv.Close()

	gw := NewMercadoPagoGateway("token-1", srv.URL, "https://app.agendly.com.br/billing")
	checkout, err := gw.CreateCheckout(context.Background(), testSubscription(), &domain.Tenant{ID: "tenant-1", Name: "Studio Bela"})
	require.NoError(t, err)

	assert.Equal(t, "pref-123", checkout.PreferenceID)
	assert.Equal(t, "https://mercadopago.test/checkout/pref-123", checkout.CheckoutURL)
	// The webhook resolves payments back through external_reference
	assert.Equal(t, "sub-1", received["external_reference"])
}

func TestMercadoPago_CreateCheckout_MissingInitPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "pref-123"})
	}))
	defer srv.Close()

	gw := NewMercadoPagoGateway("token-1", srv.URL, "")
	_, err := gw.CreateCheckout(context.Background(), testSubscription(), &domain.Tenant{})
	assert.Error(t, err)
}

func TestMercadoPago_FetchPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/mp-77" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                 77,
			"external_reference": "sub-1",
			"status":             "approved",
			"currency_id":        "BRL",
			"payment_method_id":  "pix",
			"transaction_amount": 49.90,
			"date_approved":      "2026-03-15T10:30:00Z",
		})
	}))
	defer srv.Close()

	gw := NewMercadoPagoGateway("token-1", srv.URL, "")
	detail, err := gw.FetchPayment(context.Background(), "mp-77")
	require.NoError(t, err)

	assert.Equal(t, "sub-1", detail.ExternalReference)
	assert.Equal(t, "approved", detail.Status)
	assert.Equal(t, "BRL", detail.Currency)
	assert.Equal(t, "pix", detail.PaymentMethod)
	assert.Equal(t, 49.90, detail.Amount)
	assert.Equal(t, time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC), detail.PaymentDate)
}

func TestMercadoPago_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": "Payment not found"})
	}))
	defer srv.Close()

	gw := NewMercadoPagoGateway("token-1", srv.URL, "")
	_, err := gw.FetchPayment(context.Background(), "mp-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Payment not found")
}
