package routes

import (
	"github.com/agendly/agendly-backend/internal/config"
	"github.com/agendly/agendly-backend/internal/handler"
	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	signupHandler *handler.SignupHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	webhookHandler *handler.WebhookHandler,
	adminHandler *handler.AdminHandler,
	tenantHandler *handler.TenantHandler,
	gate middleware.AccessChecker,
	cfg *config.Config,
) {
	api := router.Group("/api/v1")

	// Public signup surface
	signup := api.Group("/signup")
	signup.POST("", signupHandler.Signup)
	signup.GET("/check-subdomain", signupHandler.CheckSubdomain)

	api.GET("/plans", subscriptionHandler.ListPlans)

	// Tenant-facing surface, resolved by subdomain and gated on access
	me := api.Group("/me", middleware.RequireActiveTenant(gate))
	me.GET("", tenantHandler.Me)

	// Billing surface for a tenant. Checkout and cancellation stay
	// reachable for inactive tenants so they can pay their way back in.
	tenants := api.Group("/tenants/:id")
	tenants.POST("/subscription/checkout", subscriptionHandler.Checkout)
	tenants.GET("/subscription", subscriptionHandler.GetSubscription)
	tenants.DELETE("/subscription", subscriptionHandler.Cancel)
	tenants.GET("/payments", subscriptionHandler.ListPayments)

	// Provider notifications; always acknowledged with 200
	webhooks := api.Group("/webhooks")
	webhooks.POST("/mercadopago", webhookHandler.HandleMercadoPago)

	// Operator surface behind the static admin key
	admin := api.Group("/admin", middleware.AdminAPIKey(cfg.Admin.APIKey))
	admin.GET("/tenants", adminHandler.ListTenants)
	admin.GET("/tenants/:id", adminHandler.GetTenant)
	admin.POST("/tenants/:id/extend-trial", adminHandler.ExtendTrial)
	admin.POST("/tenants/:id/toggle-active", adminHandler.ToggleActive)
}
