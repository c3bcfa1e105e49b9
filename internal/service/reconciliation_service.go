package service

import (
	"context"
	"time"

	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/agendly/agendly-backend/internal/repository"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
)

// Sweep job names
const (
	JobBillingSweep = "billing"
	JobTrialSweep   = "trials"
)

// SweepResult summarizes one reconciliation run
type SweepResult struct {
	Job       string
	Selected  int
	Processed int
	Failed    int
}

// ReconciliationService runs the periodic sweeps that re-derive lifecycle
// state from wall-clock conditions. Every action a sweep triggers is an
// idempotent lifecycle transition that re-checks its own predicate, so
// overlapping or back-to-back runs produce no double effects.
type ReconciliationService struct {
	subRepo    *repository.SubscriptionRepository
	tenantRepo *repository.TenantRepository
	subSvc     *SubscriptionService
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	subRepo *repository.SubscriptionRepository,
	tenantRepo *repository.TenantRepository,
	subSvc *SubscriptionService,
) *ReconciliationService {
	return &ReconciliationService{
		subRepo:    subRepo,
		tenantRepo: tenantRepo,
		subSvc:     subSvc,
	}
}

// RunBillingSweep marks active subscriptions with a lapsed billing date as
// past_due. Per-item failures are logged and do not abort the batch; the
// next scheduled run retries them via fresh selection.
func (s *ReconciliationService) RunBillingSweep(ctx context.Context) (*SweepResult, error) {
	log := pkglogger.GetLogger()
	result := &SweepResult{Job: JobBillingSweep}

	subs, err := s.subRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		return result, err
	}
	result.Selected = len(subs)

	for i := range subs {
		sub := subs[i]
		if err := s.subSvc.MarkPastDue(ctx, &sub); err != nil {
			result.Failed++
			middleware.CountSweepItem(JobBillingSweep, "error")
			log.Error().Err(err).
				Str("subscription_id", sub.ID).
				Msg("billing sweep: mark past_due failed")
			continue
		}
		result.Processed++
		middleware.CountSweepItem(JobBillingSweep, "ok")
	}

	log.Info().
		Int("selected", result.Selected).
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Msg("billing sweep finished")
	return result, nil
}

// RunTrialSweep deactivates tenants whose trial lapsed without a live paid
// subscription. Tenants with an active subscription are never touched even
// if their original trial window has separately lapsed.
func (s *ReconciliationService) RunTrialSweep(ctx context.Context) (*SweepResult, error) {
	log := pkglogger.GetLogger()
	result := &SweepResult{Job: JobTrialSweep}

	tenants, err := s.tenantRepo.ListExpiredTrials(ctx, time.Now())
	if err != nil {
		return result, err
	}
	result.Selected = len(tenants)

	for i := range tenants {
		tenant := tenants[i]
		if err := s.subSvc.ExpireTrial(ctx, &tenant); err != nil {
			result.Failed++
			middleware.CountSweepItem(JobTrialSweep, "error")
			log.Error().Err(err).
				Str("tenant_id", tenant.ID).
				Msg("trial sweep: expire failed")
			continue
		}
		result.Processed++
		middleware.CountSweepItem(JobTrialSweep, "ok")
	}

	log.Info().
		Int("selected", result.Selected).
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Msg("trial sweep finished")
	return result, nil
}
