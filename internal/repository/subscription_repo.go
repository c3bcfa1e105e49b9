package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agendly/agendly-backend/internal/domain"
	"gorm.io/gorm"
)

// SubscriptionRepository handles subscription persistence
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// FindByID retrieves a subscription by ID
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// FindCurrentByTenantID retrieves the tenant's live subscription: the most
// recent non-terminal row, falling back to the most recent row of any status
// so callers can still see canceled history.
func (r *SubscriptionRepository) FindCurrentByTenantID(ctx context.Context, tenantID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status NOT IN ?", tenantID, []string{domain.SubscriptionStatusCanceled, domain.SubscriptionStatusExpired}).
		Order("created_at DESC").
		First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Create creates a new subscription
func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// Update updates an existing subscription
func (r *SubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// ListOverdue selects active subscriptions whose billing date has lapsed.
// The sweep re-checks each candidate's status before transitioning it.
func (r *SubscriptionRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_billing_at IS NOT NULL AND next_billing_at < ?", domain.SubscriptionStatusActive, now).
		Find(&subs).Error
	return subs, err
}
