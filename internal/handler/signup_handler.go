package handler

import (
	"errors"
	"net/http"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// SignupHandler handles tenant signup and subdomain checks
type SignupHandler struct {
	provisioningSvc *service.ProvisioningService
}

// NewSignupHandler creates a new SignupHandler
func NewSignupHandler(provisioningSvc *service.ProvisioningService) *SignupHandler {
	return &SignupHandler{provisioningSvc: provisioningSvc}
}

// Signup godoc
// @Summary Create a tenant with its isolated store
// @Tags signup
// @Accept json
// @Produce json
// @Param body body domain.SignupRequest true "signup info"
// @Success 201 {object} common.APIResponse
// @Router /api/v1/signup [post]
func (h *SignupHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tenant, err := h.provisioningSvc.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSubdomainTaken), errors.Is(err, common.ErrReservedName):
			common.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, common.ErrProvisioningFailed):
			common.ErrorResponse(c, http.StatusInternalServerError, "Tenant provisioning failed", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Signup failed", nil)
		}
		return
	}

	common.CreatedResponse(c, tenant.ToResponse(h.provisioningSvc.BaseDomain()))
}

// CheckSubdomain godoc
// @Summary Check subdomain availability
// @Tags signup
// @Param subdomain query string true "subdomain"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/signup/check-subdomain [get]
func (h *SignupHandler) CheckSubdomain(c *gin.Context) {
	subdomain := c.Query("subdomain")
	available, err := h.provisioningSvc.CheckSubdomain(c.Request.Context(), subdomain)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) || errors.Is(err, common.ErrReservedName) {
			common.SuccessResponse(c, gin.H{"subdomain": subdomain, "available": false, "reason": err.Error()})
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Availability check failed", nil)
		return
	}

	common.SuccessResponse(c, gin.H{"subdomain": subdomain, "available": available})
}
