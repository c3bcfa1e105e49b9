package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/agendly/agendly-backend/internal/migration"
	"github.com/agendly/agendly-backend/internal/repository"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// StoreResolver manages per-tenant databases (implemented by
// middleware.TenantDBResolver)
type StoreResolver interface {
	ResolveDB(databaseName string) *gorm.DB
	CreateDatabase(databaseName string) error
	DatabaseExists(databaseName string) (bool, error)
	DropDatabase(databaseName string) error
}

// ProvisioningService creates tenants and their isolated data stores.
// Signup is all-or-nothing: a tenant row never outlives a failed store,
// and a store created by a failed signup never outlives its tenant row.
type ProvisioningService struct {
	tenantRepo *repository.TenantRepository
	dbResolver StoreResolver
	trialDays  int
	baseDomain string
}

// NewProvisioningService creates a new ProvisioningService
func NewProvisioningService(
	tenantRepo *repository.TenantRepository,
	dbResolver StoreResolver,
	trialDays int,
	baseDomain string,
) *ProvisioningService {
	return &ProvisioningService{
		tenantRepo: tenantRepo,
		dbResolver: dbResolver,
		trialDays:  trialDays,
		baseDomain: baseDomain,
	}
}

// CheckSubdomain reports whether a subdomain is valid and free
func (s *ProvisioningService) CheckSubdomain(ctx context.Context, subdomain string) (bool, error) {
	if err := validateSubdomain(subdomain); err != nil {
		return false, err
	}
	return s.tenantRepo.CheckSubdomainAvailability(ctx, subdomain)
}

// Signup creates a tenant on trial and provisions its isolated store.
// Provisioning failure rolls the tenant row back and is surfaced as
// ErrProvisioningFailed.
func (s *ProvisioningService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.Tenant, error) {
	if err := validateSubdomain(req.Subdomain); err != nil {
		return nil, err
	}

	available, err := s.tenantRepo.CheckSubdomainAvailability(ctx, req.Subdomain)
	if err != nil {
		return nil, fmt.Errorf("check subdomain: %w", err)
	}
	if !available {
		return nil, common.ErrSubdomainTaken
	}

	tenantID := uuid.New().String()
	trialEnd := time.Now().AddDate(0, 0, s.trialDays)
	tenant := &domain.Tenant{
		ID:           tenantID,
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		Status:       domain.TenantStatusTrial,
		TrialEndsAt:  &trialEnd,
		OwnerID:      req.OwnerID,
		DatabaseName: middleware.DatabaseName(tenantID),
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	existed, _ := s.dbResolver.DatabaseExists(tenant.DatabaseName) //nolint:errcheck // treated as not-existed; Provision re-checks

	if err := s.Provision(ctx, tenant); err != nil {
		s.rollbackSignup(ctx, tenant, existed)
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Str("tenant_id", tenant.ID).
		Str("subdomain", tenant.Subdomain).
		Str("database", tenant.DatabaseName).
		Msg("tenant provisioned")

	return tenant, nil
}

// rollbackSignup undoes a failed signup: the tenant row always goes, and
// the store goes too when this signup created it. Both deletions are
// logged rather than surfaced since the provisioning error is what the
// caller needs to see.
func (s *ProvisioningService) rollbackSignup(ctx context.Context, tenant *domain.Tenant, storeExisted bool) {
	log := pkglogger.GetLogger()
	if err := s.tenantRepo.Delete(ctx, tenant.ID); err != nil {
		log.Error().
			Err(err).
			Str("tenant_id", tenant.ID).
			Msg("failed to roll back tenant after provisioning failure")
	}
	if !storeExisted {
		if err := s.dbResolver.DropDatabase(tenant.DatabaseName); err != nil {
			log.Error().
				Err(err).
				Str("database", tenant.DatabaseName).
				Msg("failed to drop store after provisioning failure")
		}
	}
}

// Provision creates and migrates the tenant's isolated store. Every step
// is idempotent, so retrying after any failure is always safe:
// creation skips an existing database, the migration set only adds what
// is missing, and seeding only happens on first creation.
func (s *ProvisioningService) Provision(ctx context.Context, tenant *domain.Tenant) error {
	dbName := tenant.DatabaseName
	if dbName == "" {
		dbName = middleware.DatabaseName(tenant.ID)
		tenant.DatabaseName = dbName
	}

	existed, err := s.dbResolver.DatabaseExists(dbName)
	if err != nil {
		return fmt.Errorf("%w: check database: %v", common.ErrProvisioningFailed, err)
	}

	if !existed {
		if err := s.dbResolver.CreateDatabase(dbName); err != nil {
			return fmt.Errorf("%w: create database: %v", common.ErrProvisioningFailed, err)
		}
	}

	tenantDB := s.dbResolver.ResolveDB(dbName)
	if err := migration.RunTenantSchema(tenantDB); err != nil {
		return fmt.Errorf("%w: migrate schema: %v", common.ErrProvisioningFailed, err)
	}

	if !existed {
		if err := migration.SeedTenantSchema(tenantDB, tenant.Name); err != nil {
			return fmt.Errorf("%w: seed data: %v", common.ErrProvisioningFailed, err)
		}
	}

	if !tenant.Provisioned {
		tenant.Provisioned = true
		if err := s.tenantRepo.Update(ctx, tenant); err != nil {
			return fmt.Errorf("%w: mark provisioned: %v", common.ErrProvisioningFailed, err)
		}
	}

	return nil
}

// BaseDomain exposes the configured base domain for response building
func (s *ProvisioningService) BaseDomain() string {
	return s.baseDomain
}

func validateSubdomain(subdomain string) error {
	if len(subdomain) < 3 || len(subdomain) > 50 || !subdomainPattern.MatchString(subdomain) {
		return fmt.Errorf("%w: subdomain must be 3-50 lowercase letters, digits or hyphens", common.ErrInvalidInput)
	}
	if middleware.IsReservedSubdomain(subdomain) {
		return common.ErrReservedName
	}
	return nil
}
