package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/agendly/agendly-backend/pkg/cache"
	"github.com/gin-gonic/gin"
)

// AccessChecker decides whether a tenant may operate (implemented by
// service.AccessGate)
type AccessChecker interface {
	IsActive(ctx context.Context, tenant *domain.Tenant) bool
}

// TenantContext holds tenant-specific information for downstream handlers
type TenantContext struct {
	TenantID     string `json:"tenant_id"`
	Subdomain    string `json:"subdomain"`
	DatabaseName string `json:"database_name"`
	Status       string `json:"status"`
}

// TenantMiddleware extracts the tenant from the request host (or the
// X-Tenant-Subdomain header set by the edge proxy) and stores it in the
// Gin context. Lookups go through the short-TTL tenant cache first.
func TenantMiddleware(tenantRepo *repository.TenantRepository, tcache cache.Service, baseDomain string) gin.HandlerFunc {
	// Compile regex once for performance
	subdomainRegex := regexp.MustCompile(`^([a-z0-9-]+)\.` + regexp.QuoteMeta(baseDomain) + `$`)

	return func(c *gin.Context) {
		if shouldSkipTenant(c.Request.URL.Path) {
			c.Next()
			return
		}

		host := c.Request.Host
		host = strings.Split(host, ":")[0] // Remove port if present
		host = strings.ToLower(host)

		var subdomain string
		if header := c.GetHeader("X-Tenant-Subdomain"); header != "" {
			subdomain = header
		} else {
			matches := subdomainRegex.FindStringSubmatch(host)
			if len(matches) < 2 {
				// Not a subdomain, might be the main domain
				c.Next()
				return
			}
			subdomain = matches[1]
		}

		if IsReservedSubdomain(subdomain) {
			c.Next()
			return
		}

		var tenant *domain.Tenant
		var cached domain.Tenant
		if err := tcache.GetTenant(c.Request.Context(), subdomain, &cached); err == nil {
			tenant = &cached
		} else {
			var err error
			tenant, err = tenantRepo.FindBySubdomain(c.Request.Context(), subdomain)
			if err != nil || tenant == nil {
				common.ErrorResponse(c, http.StatusNotFound, "Tenant not found", common.ErrNotFound)
				c.Abort()
				return
			}
			_ = tcache.SetTenant(c.Request.Context(), subdomain, tenant)
		}

		tc := TenantContext{
			TenantID:     tenant.ID,
			Subdomain:    tenant.Subdomain,
			DatabaseName: tenant.DatabaseName,
			Status:       tenant.Status,
		}
		c.Set("tenant", tc)
		c.Set("tenant_id", tc.TenantID)
		c.Set("tenant_record", tenant)

		c.Next()
	}
}

// RequireActiveTenant blocks requests for tenants the access gate rejects.
// The gate is a pure read; its view may lag the sweeps by one interval.
func RequireActiveTenant(gate AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := GetTenantRecord(c)
		if tenant == nil {
			common.ErrorResponse(c, http.StatusBadRequest, "Tenant context required", nil)
			c.Abort()
			return
		}

		if !gate.IsActive(c.Request.Context(), tenant) {
			common.ErrorResponse(c, http.StatusForbidden, "Subscription inactive or trial expired", common.ErrTenantSuspended)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetTenant extracts the tenant context from the Gin context
func GetTenant(c *gin.Context) *TenantContext {
	tenant, exists := c.Get("tenant")
	if !exists {
		return nil
	}
	if t, ok := tenant.(TenantContext); ok {
		return &t
	}
	return nil
}

// GetTenantRecord extracts the full tenant row from the Gin context
func GetTenantRecord(c *gin.Context) *domain.Tenant {
	record, exists := c.Get("tenant_record")
	if !exists {
		return nil
	}
	if t, ok := record.(*domain.Tenant); ok {
		return t
	}
	return nil
}

// GetTenantID extracts the tenant ID from the Gin context
func GetTenantID(c *gin.Context) string {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return ""
	}
	if str, ok := tenantID.(string); ok {
		return str
	}
	return ""
}

// shouldSkipTenant returns true for paths that don't need tenant resolution
func shouldSkipTenant(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/api/v1/signup",
		"/api/v1/plans",
		"/api/v1/webhooks",
		"/api/v1/admin",
	}

	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

// IsReservedSubdomain returns true for subdomains that can never be a tenant
func IsReservedSubdomain(subdomain string) bool {
	reserved := map[string]bool{
		"www":     true,
		"api":     true,
		"admin":   true,
		"app":     true,
		"mail":    true,
		"cdn":     true,
		"static":  true,
		"assets":  true,
		"status":  true,
		"help":    true,
		"support": true,
		"docs":    true,
		"blog":    true,
	}
	return reserved[subdomain]
}
