package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agendly/agendly-backend/internal/domain"
	"gorm.io/gorm"
)

// TenantRepository handles tenant persistence on the platform store
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new TenantRepository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// FindByID retrieves a tenant by ID
func (r *TenantRepository) FindByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).
		Where("id = ?", tenantID).
		First(&tenant).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}

	return &tenant, nil
}

// FindBySubdomain retrieves a tenant by subdomain
func (r *TenantRepository) FindBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).
		Where("subdomain = ?", subdomain).
		First(&tenant).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &tenant, nil
}

// CheckSubdomainAvailability reports whether a subdomain is free
func (r *TenantRepository) CheckSubdomainAvailability(ctx context.Context, subdomain string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("subdomain = ?", subdomain).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// Update updates an existing tenant
func (r *TenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

// Delete removes a tenant row. Used only to roll back a failed signup;
// established tenants are never deleted.
func (r *TenantRepository) Delete(ctx context.Context, tenantID string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", tenantID).
		Delete(&domain.Tenant{}).Error
}

// List retrieves tenants with optional status filter and pagination
func (r *TenantRepository) List(ctx context.Context, page, perPage int, status string) ([]domain.Tenant, int64, error) {
	var tenants []domain.Tenant
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Tenant{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&tenants).Error
	return tenants, total, err
}

// ListExpiredTrials selects tenants still on trial whose trial window has
// lapsed. The caller re-checks each candidate before acting on it.
func (r *TenantRepository) ListExpiredTrials(ctx context.Context, now time.Time) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := r.db.WithContext(ctx).
		Where("status = ? AND trial_ends_at IS NOT NULL AND trial_ends_at < ?", domain.TenantStatusTrial, now).
		Find(&tenants).Error
	return tenants, err
}
