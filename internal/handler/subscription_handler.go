package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler handles subscription checkout, cancellation and lookups
type SubscriptionHandler struct {
	subSvc    *service.SubscriptionService
	tenantSvc *service.TenantService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subSvc *service.SubscriptionService, tenantSvc *service.TenantService) *SubscriptionHandler {
	return &SubscriptionHandler{subSvc: subSvc, tenantSvc: tenantSvc}
}

// Checkout godoc
// @Summary Start a subscription purchase
// @Tags subscription
// @Accept json
// @Produce json
// @Param id path string true "tenant ID"
// @Param body body domain.CheckoutRequest true "plan and payment method"
// @Success 201 {object} common.APIResponse
// @Router /api/v1/tenants/{id}/subscription/checkout [post]
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}

	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub, checkoutURL, err := h.subSvc.Checkout(c.Request.Context(), tenant, req.Plan, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidPlan):
			common.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, common.ErrSubscriptionExists):
			common.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, common.ErrGatewayUnavailable):
			common.ErrorResponse(c, http.StatusBadGateway, "Payment gateway unavailable", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Checkout failed", nil)
		}
		return
	}

	common.CreatedResponse(c, domain.CheckoutResponse{
		Subscription: sub.ToResponse(),
		CheckoutURL:  checkoutURL,
	})
}

// GetSubscription godoc
// @Summary Get the tenant's current subscription
// @Tags subscription
// @Param id path string true "tenant ID"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/tenants/{id}/subscription [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	tenantID := c.Param("id")
	sub, err := h.subSvc.GetCurrent(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, common.ErrSubscriptionNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Subscription not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Subscription lookup failed", nil)
		return
	}
	common.SuccessResponse(c, sub.ToResponse())
}

// Cancel godoc
// @Summary Cancel the tenant's subscription
// @Tags subscription
// @Accept json
// @Param id path string true "tenant ID"
// @Param body body domain.CancelRequest false "cancellation reason"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/tenants/{id}/subscription [delete]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	tenantID := c.Param("id")

	var req domain.CancelRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	sub, err := h.subSvc.GetCurrent(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, common.ErrSubscriptionNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Subscription not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Subscription lookup failed", nil)
		return
	}

	// Cancel is idempotent: an already-canceled subscription is a no-op
	if err := h.subSvc.CancelSubscription(c.Request.Context(), sub, req.Reason); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Cancellation failed", nil)
		return
	}

	common.SuccessResponse(c, sub.ToResponse())
}

// ListPayments godoc
// @Summary List the tenant's payments
// @Tags subscription
// @Param id path string true "tenant ID"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/tenants/{id}/payments [get]
func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	tenantID := c.Param("id")
	page, perPage := pagination(c)

	payments, total, err := h.tenantSvc.ListPayments(c.Request.Context(), tenantID, page, perPage)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Payment listing failed", nil)
		return
	}
	common.SuccessWithMeta(c, payments, common.NewMeta(page, perPage, total))
}

// ListPlans godoc
// @Summary List available plans and prices
// @Tags subscription
// @Success 200 {object} common.APIResponse
// @Router /api/v1/plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	common.SuccessResponse(c, h.subSvc.PlanPrices())
}

func (h *SubscriptionHandler) loadTenant(c *gin.Context) (*domain.Tenant, bool) {
	tenant, err := h.tenantSvc.FindTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Tenant lookup failed", nil)
		return nil, false
	}
	if tenant == nil {
		common.ErrorResponse(c, http.StatusNotFound, "Tenant not found", nil)
		return nil, false
	}
	return tenant, true
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))         //nolint:errcheck // default applies
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20")) //nolint:errcheck // default applies
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
