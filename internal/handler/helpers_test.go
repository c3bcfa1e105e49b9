package handler

import (
	"context"
	"fmt"

	"github.com/agendly/agendly-backend/internal/config"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/gateway"
)

func testBillingConfig() config.BillingConfig {
	return config.BillingConfig{
		TrialDays: 15,
		Currency:  "BRL",
		Plans: map[string]float64{
			"basic":   49.90,
			"premium": 99.90,
		},
	}
}

// failingGateway simulates an unreachable provider
type failingGateway struct{}

func (failingGateway) CreateCheckout(context.Context, *domain.Subscription, *domain.Tenant) (*gateway.Checkout, error) {
	return nil, fmt.Errorf("gateway unreachable")
}

func (failingGateway) FetchPayment(context.Context, string) (*gateway.PaymentDetail, error) {
	return nil, fmt.Errorf("gateway unreachable")
}
