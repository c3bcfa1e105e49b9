package handler

import (
	"net/http"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/agendly/agendly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// TenantHandler serves the tenant-facing surface resolved by subdomain
type TenantHandler struct {
	tenantSvc  *service.TenantService
	baseDomain string
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantSvc *service.TenantService, baseDomain string) *TenantHandler {
	return &TenantHandler{tenantSvc: tenantSvc, baseDomain: baseDomain}
}

// Me godoc
// @Summary Current tenant profile
// @Tags tenant
// @Success 200 {object} common.APIResponse
// @Router /api/v1/me [get]
//
// Only reachable through the access gate; an expired trial or dead
// subscription gets 403 before this handler runs.
func (h *TenantHandler) Me(c *gin.Context) {
	tenant := middleware.GetTenantRecord(c)
	if tenant == nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Tenant context required", nil)
		return
	}

	detail, err := h.tenantSvc.GetTenantDetail(c.Request.Context(), tenant.ID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Tenant lookup failed", nil)
		return
	}
	common.SuccessResponse(c, detail)
}
