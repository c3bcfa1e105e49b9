package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/agendly/agendly-backend/pkg/cache"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
)

// TenantService handles tenant administration: listings, detail and the
// explicit operator escape hatches. The override operations touch only the
// tenant row, never the subscription ledger.
type TenantService struct {
	tenantRepo  *repository.TenantRepository
	subRepo     *repository.SubscriptionRepository
	paymentRepo *repository.PaymentRepository
	tcache      cache.Service
	baseDomain  string
}

// NewTenantService creates a new TenantService
func NewTenantService(
	tenantRepo *repository.TenantRepository,
	subRepo *repository.SubscriptionRepository,
	paymentRepo *repository.PaymentRepository,
	tcache cache.Service,
	baseDomain string,
) *TenantService {
	return &TenantService{
		tenantRepo:  tenantRepo,
		subRepo:     subRepo,
		paymentRepo: paymentRepo,
		tcache:      tcache,
		baseDomain:  baseDomain,
	}
}

// TenantDetail is the admin view of one tenant
type TenantDetail struct {
	Tenant       *domain.TenantResponse       `json:"tenant"`
	Subscription *domain.SubscriptionResponse `json:"subscription,omitempty"`
	PaymentCount int64                        `json:"payment_count"`
}

// ListTenants lists tenants with optional status filter
func (s *TenantService) ListTenants(ctx context.Context, page, perPage int, status string) ([]domain.TenantResponse, int64, error) {
	tenants, total, err := s.tenantRepo.List(ctx, page, perPage, status)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = *tenants[i].ToResponse(s.baseDomain)
	}
	return responses, total, nil
}

// FindTenant returns the raw tenant row, nil when unknown
func (s *TenantService) FindTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, tenantID)
}

// GetTenantDetail returns a tenant with its current subscription
func (s *TenantService) GetTenantDetail(ctx context.Context, tenantID string) (*TenantDetail, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, common.ErrTenantNotFound
	}

	detail := &TenantDetail{Tenant: tenant.ToResponse(s.baseDomain)}

	sub, err := s.subRepo.FindCurrentByTenantID(ctx, tenantID)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("tenant_id", tenantID).Msg("subscription lookup failed")
	} else if sub != nil {
		detail.Subscription = sub.ToResponse()
	}

	count, err := s.paymentRepo.CountByTenantID(ctx, tenantID)
	if err == nil {
		detail.PaymentCount = count
	}

	return detail, nil
}

// ExtendTrial adds days to the tenant's trial window and forces it back
// onto trial status. Operator override; the subscription row is untouched.
func (s *TenantService) ExtendTrial(ctx context.Context, tenantID string, days int) (*domain.Tenant, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", common.ErrInvalidInput)
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, common.ErrTenantNotFound
	}

	base := time.Now()
	if tenant.TrialEndsAt != nil && tenant.TrialEndsAt.After(base) {
		base = *tenant.TrialEndsAt
	}
	newEnd := base.AddDate(0, 0, days)
	tenant.TrialEndsAt = &newEnd
	tenant.Status = domain.TenantStatusTrial

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)

	pkglogger.GetLogger().Info().
		Str("tenant_id", tenant.ID).
		Int("days", days).
		Time("trial_ends_at", newEnd).
		Msg("trial extended")

	return tenant, nil
}

// ToggleActive flips the tenant between active and inactive without
// touching the subscription row. Explicit operator escape hatch.
func (s *TenantService) ToggleActive(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, common.ErrTenantNotFound
	}

	if tenant.Status == domain.TenantStatusInactive {
		tenant.Status = domain.TenantStatusActive
	} else {
		tenant.Status = domain.TenantStatusInactive
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)

	pkglogger.GetLogger().Info().
		Str("tenant_id", tenant.ID).
		Str("status", tenant.Status).
		Msg("tenant status toggled")

	return tenant, nil
}

// ListPayments returns the tenant's payment evidence, newest first
func (s *TenantService) ListPayments(ctx context.Context, tenantID string, page, perPage int) ([]domain.PaymentSummary, int64, error) {
	payments, total, err := s.paymentRepo.ListByTenantID(ctx, tenantID, page, perPage)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]domain.PaymentSummary, len(payments))
	for i := range payments {
		summaries[i] = payments[i].ToSummary()
	}
	return summaries, total, nil
}

func (s *TenantService) invalidate(ctx context.Context, tenant *domain.Tenant) {
	if err := s.tcache.InvalidateTenant(ctx, tenant.Subdomain); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("subdomain", tenant.Subdomain).Msg("tenant cache invalidation failed")
	}
}
