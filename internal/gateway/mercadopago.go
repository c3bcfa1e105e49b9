package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
)

// Checkout is the result of creating a gateway checkout preference
type Checkout struct {
	CheckoutURL  string
	PreferenceID string
}

// PaymentDetail is the provider-side view of a payment
type PaymentDetail struct {
	ExternalReference string
	Amount            float64
	Currency          string
	Status            string
	PaymentMethod     string
	PaymentDate       time.Time
}

// BillingGateway is the external payment provider contract consumed by the core
type BillingGateway interface {
	CreateCheckout(ctx context.Context, sub *domain.Subscription, tenant *domain.Tenant) (*Checkout, error)
	FetchPayment(ctx context.Context, externalPaymentID string) (*PaymentDetail, error)
}

// MercadoPagoGateway talks to the Mercado Pago REST API.
// With no access token it stays constructible but every call
// fails with ErrGatewayUnavailable.
type MercadoPagoGateway struct {
	accessToken string
	baseURL     string
	backURL     string
	client      *http.Client
}

// NewMercadoPagoGateway creates a new gateway client
func NewMercadoPagoGateway(accessToken, baseURL, backURL string) *MercadoPagoGateway {
	if baseURL == "" {
		baseURL = "https://api.mercadopago.com"
	}
	return &MercadoPagoGateway{
		accessToken: accessToken,
		baseURL:     baseURL,
		backURL:     backURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateCheckout creates a checkout preference for a pending subscription.
// The subscription ID travels as external_reference so the webhook can
// resolve the payment back to the ledger.
func (g *MercadoPagoGateway) CreateCheckout(ctx context.Context, sub *domain.Subscription, tenant *domain.Tenant) (*Checkout, error) {
	if g.accessToken == "" {
		return nil, common.ErrGatewayUnavailable
	}

	pref := map[string]interface{}{
		"external_reference": sub.ID,
		"items": []map[string]interface{}{
			{
				"title":       fmt.Sprintf("Agendly %s plan - %s", sub.Plan, tenant.Name),
				"quantity":    1,
				"unit_price":  sub.Amount,
				"currency_id": sub.Currency,
			},
		},
		"metadata": map[string]string{
			"tenant_id":       tenant.ID,
			"subscription_id": sub.ID,
		},
	}
	if g.backURL != "" {
		pref["back_urls"] = map[string]string{
			"success": g.backURL,
			"pending": g.backURL,
			"failure": g.backURL,
		}
	}

	result, err := g.request(ctx, http.MethodPost, "/checkout/preferences", pref)
	if err != nil {
		return nil, err
	}

	prefID, _ := result["id"].(string)            //nolint:errcheck // type assertion, not error
	initPoint, _ := result["init_point"].(string) //nolint:errcheck // type assertion, not error
	if initPoint == "" {
		return nil, fmt.Errorf("mercadopago preference response missing init_point")
	}

	return &Checkout{
		CheckoutURL:  initPoint,
		PreferenceID: prefID,
	}, nil
}

// FetchPayment retrieves payment detail by the provider's payment ID
func (g *MercadoPagoGateway) FetchPayment(ctx context.Context, externalPaymentID string) (*PaymentDetail, error) {
	if g.accessToken == "" {
		return nil, common.ErrGatewayUnavailable
	}

	result, err := g.request(ctx, http.MethodGet, "/v1/payments/"+externalPaymentID, nil)
	if err != nil {
		return nil, err
	}

	detail := &PaymentDetail{}
	detail.ExternalReference, _ = result["external_reference"].(string) //nolint:errcheck // type assertion, not error
	detail.Status, _ = result["status"].(string)                        //nolint:errcheck // type assertion, not error
	detail.Currency, _ = result["currency_id"].(string)                 //nolint:errcheck // type assertion, not error
	detail.PaymentMethod, _ = result["payment_method_id"].(string)      //nolint:errcheck // type assertion, not error
	if amount, ok := result["transaction_amount"].(float64); ok {
		detail.Amount = amount
	}
	detail.PaymentDate = time.Now()
	if approved, ok := result["date_approved"].(string); ok && approved != "" {
		if t, err := time.Parse(time.RFC3339, approved); err == nil {
			detail.PaymentDate = t
		}
	}

	return detail, nil
}

func (g *MercadoPagoGateway) request(ctx context.Context, method, path string, payload interface{}) (map[string]interface{}, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal mercadopago request: %w", err)
		}
		bodyReader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mercadopago response body: %w", err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse mercadopago response: %w", err)
	}

	if resp.StatusCode >= 400 {
		errMsg, _ := result["message"].(string) //nolint:errcheck // type assertion, not error
		return nil, fmt.Errorf("mercadopago API error (%d): %s", resp.StatusCode, errMsg)
	}

	return result, nil
}
