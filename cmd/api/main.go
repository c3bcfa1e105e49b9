package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/agendly/agendly-backend/internal/config"
	"github.com/agendly/agendly-backend/internal/gateway"
	"github.com/agendly/agendly-backend/internal/handler"
	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/agendly/agendly-backend/internal/migration"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/agendly/agendly-backend/internal/routes"
	"github.com/agendly/agendly-backend/internal/service"
	pkgcache "github.com/agendly/agendly-backend/pkg/cache"
	pkglogger "github.com/agendly/agendly-backend/pkg/logger"
	pkgredis "github.com/agendly/agendly-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Agendly Backend API
// @version         1.0
// @description     Multi-tenant scheduling SaaS - tenant lifecycle and billing core
//
// @host            localhost:8080
// @BasePath        /api/v1

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	logger := pkglogger.GetLogger()
	logger.Info().Str("env", env).Strs("dotenv", dotenvFiles).Msg("starting agendly api")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Platform migration failed: %v", err)
	}
	logger.Info().Str("database", cfg.Database.Name).Msg("connected to MySQL")

	// Redis is optional; tenant lookups just skip the cache without it
	var tcache pkgcache.Service
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, tenant cache disabled")
		tcache = pkgcache.NewService(nil)
	} else {
		tcache = pkgcache.NewService(redisClient)
	}

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Infrastructure
	dbResolver := middleware.NewTenantDBResolver(db)
	gw := gateway.NewMercadoPagoGateway(cfg.Gateway.AccessToken, cfg.Gateway.BaseURL, cfg.Gateway.BackURL)

	// Services
	provisioningSvc := service.NewProvisioningService(tenantRepo, dbResolver, cfg.Billing.TrialDays, cfg.Server.BaseDomain)
	subSvc := service.NewSubscriptionService(db, subRepo, tenantRepo, gw, cfg.Billing)
	webhookSvc := service.NewWebhookService(paymentRepo, subRepo, subSvc, gw)
	tenantSvc := service.NewTenantService(tenantRepo, subRepo, paymentRepo, tcache, cfg.Server.BaseDomain)
	gate := service.NewAccessGate(tenantRepo)

	// Handlers
	signupHandler := handler.NewSignupHandler(provisioningSvc)
	subscriptionHandler := handler.NewSubscriptionHandler(subSvc, tenantSvc)
	webhookHandler := handler.NewWebhookHandler(webhookSvc)
	adminHandler := handler.NewAdminHandler(tenantSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc, cfg.Server.BaseDomain)

	if env != "local" && env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://" + cfg.Server.BaseDomain, "https://*." + cfg.Server.BaseDomain},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.TenantMiddleware(tenantRepo, tcache, cfg.Server.BaseDomain))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "cache": tcache.IsAvailable()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.Setup(router, signupHandler, subscriptionHandler, webhookHandler, adminHandler, tenantHandler, gate, cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Server.Env == "local" || cfg.Server.Env == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
