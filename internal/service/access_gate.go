package service

import (
	"context"
	"time"

	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/repository"
)

// AccessGate answers "may this tenant operate" without mutating anything.
// It reads whatever status the lifecycle service and sweeps last wrote, so
// its answer can lag a lapsed trial by up to one sweep interval.
type AccessGate struct {
	tenantRepo *repository.TenantRepository
}

// NewAccessGate creates a new AccessGate
func NewAccessGate(tenantRepo *repository.TenantRepository) *AccessGate {
	return &AccessGate{tenantRepo: tenantRepo}
}

// IsActive reports whether the tenant is allowed to operate: an unexpired
// trial, or a subscription the ledger considers live.
func (g *AccessGate) IsActive(_ context.Context, tenant *domain.Tenant) bool {
	if tenant == nil {
		return false
	}

	if tenant.Status == domain.TenantStatusTrial &&
		tenant.TrialEndsAt != nil && tenant.TrialEndsAt.After(time.Now()) {
		return true
	}

	if tenant.SubscriptionStatus != nil {
		switch *tenant.SubscriptionStatus {
		case domain.SubscriptionStatusActive, "trial":
			return tenant.Status != domain.TenantStatusInactive
		}
	}

	return false
}

// IsActiveByID loads the tenant and applies the gate. Unknown tenants are
// never active.
func (g *AccessGate) IsActiveByID(ctx context.Context, tenantID string) bool {
	tenant, err := g.tenantRepo.FindByID(ctx, tenantID)
	if err != nil || tenant == nil {
		return false
	}
	return g.IsActive(ctx, tenant)
}
