package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/agendly/agendly-backend/internal/config"
	"github.com/agendly/agendly-backend/internal/gateway"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/agendly/agendly-backend/internal/service"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Sweeper runs the daily reconciliation jobs. It is fired by an external
// scheduler (cron); a non-zero exit code signals a failed run. Re-running
// a sweep twice back-to-back produces no double effects since every
// transition it triggers is idempotent.
func main() {
	configPath := flag.String("config", "", "config file path (defaults to configs/config.$APP_ENV.yaml)")
	job := flag.String("job", "all", "sweep to run: billing, trials, all")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
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

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	tenantRepo := repository.NewTenantRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	gw := gateway.NewMercadoPagoGateway(cfg.Gateway.AccessToken, cfg.Gateway.BaseURL, cfg.Gateway.BackURL)
	subSvc := service.NewSubscriptionService(db, subRepo, tenantRepo, gw, cfg.Billing)
	reconciler := service.NewReconciliationService(subRepo, tenantRepo, subSvc)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := false
	switch *job {
	case service.JobBillingSweep:
		failed = runSweep(ctx, reconciler.RunBillingSweep)
	case service.JobTrialSweep:
		failed = runSweep(ctx, reconciler.RunTrialSweep)
	case "all":
		failed = runSweep(ctx, reconciler.RunBillingSweep)
		failed = runSweep(ctx, reconciler.RunTrialSweep) || failed
	default:
		log.Fatalf("Unknown job %q (want billing, trials or all)", *job)
	}

	if failed {
		os.Exit(1)
	}
}

func runSweep(ctx context.Context, sweep func(context.Context) (*service.SweepResult, error)) bool {
	result, err := sweep(ctx)
	if err != nil {
		pkglogger.GetLogger().Error().Err(err).Str("job", result.Job).Msg("sweep aborted")
		return true
	}
	// Per-item failures are already logged; they fail the run so the
	// scheduler surfaces them, but the next run retries via fresh selection
	return result.Failed > 0
}
