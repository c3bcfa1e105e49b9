package repository

import (
	"context"
	"errors"

	"github.com/agendly/agendly-backend/internal/domain"
	"gorm.io/gorm"
)

// PaymentRepository handles payment evidence persistence.
// Payments are append-only; there is no update path.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment record
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByProviderPaymentID finds a payment by the provider's external ID.
// This is the webhook idempotency check: nil, nil means not yet recorded.
func (r *PaymentRepository) FindByProviderPaymentID(ctx context.Context, provider domain.PaymentProvider, externalID string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_payment_id = ?", provider, externalID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByTenantID lists payments for a tenant with pagination
func (r *PaymentRepository) ListByTenantID(ctx context.Context, tenantID string, page, perPage int) ([]domain.Payment, int64, error) {
	var payments []domain.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("tenant_id = ?", tenantID)
	query.Count(&total)

	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&payments).Error

	return payments, total, err
}

// CountByTenantID returns the number of payment rows for a tenant
func (r *PaymentRepository) CountByTenantID(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
