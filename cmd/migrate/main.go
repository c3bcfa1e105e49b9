package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/agendly/agendly-backend/internal/config"
	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/agendly/agendly-backend/internal/migration"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/agendly/agendly-backend/internal/service"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Migrate applies the platform schema and, with -tenants, re-runs the
// tenant-schema migration set against every provisioned tenant store.
// Everything here is idempotent, so re-running is always safe.
func main() {
	configPath := flag.String("config", "", "config file path (defaults to configs/config.$APP_ENV.yaml)")
	tenants := flag.Bool("tenants", false, "also migrate every tenant store")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)

	path := *configPath
	if path == "" {
		path = fmt.Sprintf("configs/config.%s.yaml", env)
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if err := migration.Run(db); err != nil {
		log.Fatalf("Platform migration failed: %v", err)
	}
	pkglogger.GetLogger().Info().Msg("platform schema migrated")

	if !*tenants {
		return
	}

	tenantRepo := repository.NewTenantRepository(db)
	dbResolver := middleware.NewTenantDBResolver(db)
	provisioner := service.NewProvisioningService(tenantRepo, dbResolver, cfg.Billing.TrialDays, cfg.Server.BaseDomain)

	ctx := context.Background()
	page := 1
	migrated, failed := 0, 0
	for {
		list, _, err := tenantRepo.List(ctx, page, 100, "")
		if err != nil {
			log.Fatalf("Tenant listing failed: %v", err)
		}
		if len(list) == 0 {
			break
		}
		for i := range list {
			tenant := list[i]
			if err := provisioner.Provision(ctx, &tenant); err != nil {
				failed++
				pkglogger.GetLogger().Error().Err(err).Str("tenant_id", tenant.ID).Msg("tenant migration failed")
				continue
			}
			migrated++
		}
		page++
	}

	pkglogger.GetLogger().Info().Int("migrated", migrated).Int("failed", failed).Msg("tenant stores migrated")
	if failed > 0 {
		os.Exit(1)
	}
}
