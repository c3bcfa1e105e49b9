package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/config"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/gateway"
	"github.com/agendly/agendly-backend/internal/repository"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cancellation reasons recorded in subscription metadata
const (
	CancelReasonUserRequested = "user_requested"
	CancelReasonSuperseded    = "superseded"
)

// SubscriptionService is the sole writer of subscription status and of the
// tenant's status/subscription_status mirror. Every transition updates the
// tenant and subscription rows in one transaction, and every transition is
// total: invoked from an unexpected status it is a no-op, never an error,
// so webhook replays and overlapping sweeps stay safe.
type SubscriptionService struct {
	db         *gorm.DB
	subRepo    *repository.SubscriptionRepository
	tenantRepo *repository.TenantRepository
	gw         gateway.BillingGateway
	billing    config.BillingConfig
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	db *gorm.DB,
	subRepo *repository.SubscriptionRepository,
	tenantRepo *repository.TenantRepository,
	gw gateway.BillingGateway,
	billing config.BillingConfig,
) *SubscriptionService {
	return &SubscriptionService{
		db:         db,
		subRepo:    subRepo,
		tenantRepo: tenantRepo,
		gw:         gw,
		billing:    billing,
	}
}

// CreateSubscription creates a pending subscription for a tenant. Price
// comes from the injected plan table; no gateway call happens here.
// A tenant with an active or past_due subscription gets
// ErrSubscriptionExists; a stale pending checkout is superseded.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, tenant *domain.Tenant, plan, paymentMethod string) (*domain.Subscription, error) {
	amount, ok := s.billing.Plans[plan]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidPlan, plan)
	}

	sub := &domain.Subscription{
		ID:            uuid.New().String(),
		TenantID:      tenant.ID,
		Status:        domain.SubscriptionStatusPending,
		Plan:          plan,
		Amount:        amount,
		Currency:      s.billing.Currency,
		BillingCycle:  "monthly",
		PaymentMethod: paymentMethod,
		TrialEndsAt:   tenant.TrialEndsAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One live subscription per tenant. A paying (active or past_due)
		// tenant keeps its row and the checkout is rejected; an abandoned
		// pending checkout is superseded by the fresh one.
		var live domain.Subscription
		err := tx.Where("tenant_id = ? AND status IN ?", tenant.ID, []string{
			domain.SubscriptionStatusPending,
			domain.SubscriptionStatusActive,
			domain.SubscriptionStatusPastDue,
		}).Order("created_at DESC").First(&live).Error
		switch {
		case err == nil:
			if live.Status != domain.SubscriptionStatusPending {
				return fmt.Errorf("%w: subscription %s is %s", common.ErrSubscriptionExists, live.ID, live.Status)
			}
			now := time.Now()
			live.Status = domain.SubscriptionStatusCanceled
			live.CanceledAt = &now
			live.Metadata = mergeMetadata(live.Metadata, map[string]string{
				"cancellation_reason": CancelReasonSuperseded,
				"canceled_at":         now.Format(time.RFC3339),
			})
			if err := tx.Save(&live).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		return s.mirrorTenant(tx, tenant.ID, nil, domain.SubscriptionStatusPending)
	})
	if err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Str("tenant_id", tenant.ID).
		Str("subscription_id", sub.ID).
		Str("plan", plan).
		Msg("subscription created")

	return sub, nil
}

// Checkout creates a pending subscription and a gateway checkout for it.
// A gateway failure is surfaced; the pending row stays behind and the next
// checkout attempt creates a fresh one.
func (s *SubscriptionService) Checkout(ctx context.Context, tenant *domain.Tenant, plan, paymentMethod string) (*domain.Subscription, string, error) {
	sub, err := s.CreateSubscription(ctx, tenant, plan, paymentMethod)
	if err != nil {
		return nil, "", err
	}

	checkout, err := s.gw.CreateCheckout(ctx, sub, tenant)
	if err != nil {
		return nil, "", fmt.Errorf("create checkout: %w", err)
	}

	return sub, checkout.CheckoutURL, nil
}

// ActivateSubscription moves a pending or past_due subscription to active
// and advances next_billing_at one cycle. Re-invocation on an already
// active subscription just refreshes next_billing_at.
func (s *SubscriptionService) ActivateSubscription(ctx context.Context, sub *domain.Subscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.lockCurrent(tx, sub.ID)
		if err != nil || current == nil {
			return err
		}

		switch current.Status {
		case domain.SubscriptionStatusPending, domain.SubscriptionStatusPastDue, domain.SubscriptionStatusActive:
		default:
			// canceled and expired are not activatable; replayed webhooks land here
			return nil
		}

		next := nextBillingDate(time.Now(), current.BillingCycle)
		current.Status = domain.SubscriptionStatusActive
		current.NextBillingAt = &next
		if err := tx.Save(current).Error; err != nil {
			return err
		}

		status := domain.TenantStatusActive
		if err := s.mirrorTenant(tx, current.TenantID, &status, domain.SubscriptionStatusActive); err != nil {
			return err
		}

		*sub = *current
		return nil
	})
}

// MarkPastDue moves an active subscription to past_due. The tenant is cut
// off only when its trial window has also lapsed; a billing failure alone
// does not kill a tenant still inside its trial.
func (s *SubscriptionService) MarkPastDue(ctx context.Context, sub *domain.Subscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.lockCurrent(tx, sub.ID)
		if err != nil || current == nil {
			return err
		}

		if current.Status != domain.SubscriptionStatusActive {
			// an activation that raced the sweep removed this row from the
			// candidate set
			return nil
		}

		current.Status = domain.SubscriptionStatusPastDue
		current.NextBillingAt = nil
		if err := tx.Save(current).Error; err != nil {
			return err
		}

		tenantStatus, err := s.cascadeStatus(tx, current.TenantID)
		if err != nil {
			return err
		}
		if err := s.mirrorTenant(tx, current.TenantID, tenantStatus, domain.SubscriptionStatusPastDue); err != nil {
			return err
		}

		*sub = *current
		return nil
	})
}

// CancelSubscription moves any non-terminal subscription to canceled and
// records the reason in its metadata. Canceling an already-canceled
// subscription is a no-op.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, sub *domain.Subscription, reason string) error {
	if reason == "" {
		reason = CancelReasonUserRequested
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.lockCurrent(tx, sub.ID)
		if err != nil || current == nil {
			return err
		}

		if current.IsTerminal() {
			return nil
		}

		now := time.Now()
		current.Status = domain.SubscriptionStatusCanceled
		current.CanceledAt = &now
		current.NextBillingAt = nil
		current.Metadata = mergeMetadata(current.Metadata, map[string]string{
			"cancellation_reason": reason,
			"canceled_at":         now.Format(time.RFC3339),
		})
		if err := tx.Save(current).Error; err != nil {
			return err
		}

		tenantStatus, err := s.cascadeStatus(tx, current.TenantID)
		if err != nil {
			return err
		}
		if err := s.mirrorTenant(tx, current.TenantID, tenantStatus, domain.SubscriptionStatusCanceled); err != nil {
			return err
		}

		pkglogger.GetLogger().Info().
			Str("subscription_id", current.ID).
			Str("reason", reason).
			Msg("subscription canceled")

		*sub = *current
		return nil
	})
}

// ExpireTrial flips a lapsed-trial tenant to inactive. The predicate is
// re-checked inside the transaction so a paid activation landing between
// sweep selection and this call wins.
func (s *SubscriptionService) ExpireTrial(ctx context.Context, tenant *domain.Tenant) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.Tenant
		err := tx.Where("id = ?", tenant.ID).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if current.Status != domain.TenantStatusTrial ||
			current.TrialEndsAt == nil || current.TrialEndsAt.After(time.Now()) {
			return nil
		}

		// A tenant with a genuinely active subscription is never touched
		var sub domain.Subscription
		err = tx.Where("tenant_id = ?", current.ID).
			Order("created_at DESC").
			First(&sub).Error
		hasSub := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if hasSub && sub.Status == domain.SubscriptionStatusActive {
			return nil
		}

		if hasSub && (sub.Status == domain.SubscriptionStatusPending || sub.Status == domain.SubscriptionStatusPastDue) {
			sub.Status = domain.SubscriptionStatusExpired
			sub.NextBillingAt = nil
			if err := tx.Save(&sub).Error; err != nil {
				return err
			}
		}

		status := domain.TenantStatusInactive
		if err := s.mirrorTenant(tx, current.ID, &status, domain.SubscriptionStatusExpired); err != nil {
			return err
		}

		tenant.Status = domain.TenantStatusInactive
		return nil
	})
}

// GetCurrent returns the tenant's live subscription, or ErrSubscriptionNotFound
func (s *SubscriptionService) GetCurrent(ctx context.Context, tenantID string) (*domain.Subscription, error) {
	sub, err := s.subRepo.FindCurrentByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, common.ErrSubscriptionNotFound
	}
	return sub, nil
}

// PlanPrices returns the injected plan table
func (s *SubscriptionService) PlanPrices() []domain.PlanPrice {
	plans := []string{domain.PlanBasic, domain.PlanPremium, domain.PlanEnterprise}
	prices := make([]domain.PlanPrice, 0, len(plans))
	for _, p := range plans {
		if amount, ok := s.billing.Plans[p]; ok {
			prices = append(prices, domain.PlanPrice{Plan: p, Amount: amount, Currency: s.billing.Currency})
		}
	}
	return prices
}

// lockCurrent reloads a subscription inside the transaction so the
// transition predicate is checked against the latest committed state
func (s *SubscriptionService) lockCurrent(tx *gorm.DB, subID string) (*domain.Subscription, error) {
	var current domain.Subscription
	err := tx.Where("id = ?", subID).First(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &current, nil
}

// mirrorTenant writes the tenant-side subscription_status mirror, and
// optionally the tenant status, inside the caller's transaction
func (s *SubscriptionService) mirrorTenant(tx *gorm.DB, tenantID string, status *string, subscriptionStatus string) error {
	updates := map[string]interface{}{"subscription_status": subscriptionStatus}
	if status != nil {
		updates["status"] = *status
	}
	return tx.Model(&domain.Tenant{}).Where("id = ?", tenantID).Updates(updates).Error
}

// cascadeStatus returns the tenant status a billing failure should force:
// inactive once the trial window has lapsed, untouched while it is open
func (s *SubscriptionService) cascadeStatus(tx *gorm.DB, tenantID string) (*string, error) {
	var tenant domain.Tenant
	if err := tx.Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		return nil, err
	}

	if tenant.TrialEndsAt != nil && tenant.TrialEndsAt.After(time.Now()) {
		return nil, nil // grace period: trial still covers access
	}
	status := domain.TenantStatusInactive
	return &status, nil
}

func nextBillingDate(from time.Time, cycle string) time.Time {
	if cycle == "yearly" {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

func mergeMetadata(existing string, extra map[string]string) string {
	merged := map[string]string{}
	if existing != "" {
		_ = json.Unmarshal([]byte(existing), &merged)
	}
	for k, v := range extra {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return existing
	}
	return string(out)
}
