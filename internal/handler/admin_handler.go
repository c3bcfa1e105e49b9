package handler

import (
	"errors"
	"net/http"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles operator tenant administration
type AdminHandler struct {
	tenantSvc *service.TenantService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(tenantSvc *service.TenantService) *AdminHandler {
	return &AdminHandler{tenantSvc: tenantSvc}
}

// ExtendTrialRequest adds days to a tenant's trial
type ExtendTrialRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}

// ListTenants godoc
// @Summary List tenants
// @Tags admin
// @Param status query string false "filter: trial, active, inactive"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/admin/tenants [get]
func (h *AdminHandler) ListTenants(c *gin.Context) {
	page, perPage := pagination(c)
	status := c.Query("status")

	tenants, total, err := h.tenantSvc.ListTenants(c.Request.Context(), page, perPage, status)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Tenant listing failed", nil)
		return
	}
	common.SuccessWithMeta(c, tenants, common.NewMeta(page, perPage, total))
}

// GetTenant godoc
// @Summary Get tenant detail
// @Tags admin
// @Param id path string true "tenant ID"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/admin/tenants/{id} [get]
func (h *AdminHandler) GetTenant(c *gin.Context) {
	detail, err := h.tenantSvc.GetTenantDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrTenantNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Tenant not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Tenant lookup failed", nil)
		return
	}
	common.SuccessResponse(c, detail)
}

// ExtendTrial godoc
// @Summary Extend a tenant's trial window
// @Tags admin
// @Accept json
// @Param id path string true "tenant ID"
// @Param body body ExtendTrialRequest true "days to add"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/admin/tenants/{id}/extend-trial [post]
func (h *AdminHandler) ExtendTrial(c *gin.Context) {
	var req ExtendTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tenant, err := h.tenantSvc.ExtendTrial(c.Request.Context(), c.Param("id"), req.Days)
	if err != nil {
		h.writeAdminError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{
		"tenant_id":     tenant.ID,
		"status":        tenant.Status,
		"trial_ends_at": tenant.TrialEndsAt,
	})
}

// ToggleActive godoc
// @Summary Force a tenant between active and inactive
// @Tags admin
// @Param id path string true "tenant ID"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/admin/tenants/{id}/toggle-active [post]
func (h *AdminHandler) ToggleActive(c *gin.Context) {
	tenant, err := h.tenantSvc.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAdminError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{
		"tenant_id": tenant.ID,
		"status":    tenant.Status,
	})
}

func (h *AdminHandler) writeAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrTenantNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Tenant not found", nil)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "Operation failed", nil)
	}
}
