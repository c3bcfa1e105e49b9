package handler

import (
	"net/http"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives payment provider notifications
type WebhookHandler struct {
	webhookSvc *service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookSvc *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// HandleMercadoPago godoc
// @Summary Mercado Pago webhook endpoint
// @Tags webhook
// @Accept json
// @Success 200 {object} common.APIResponse
// @Router /api/v1/webhooks/mercadopago [post]
//
// Always acknowledges with 200 once the payload parses: a non-2xx answer
// would make the provider re-deliver events we already handled or already
// decided to drop. 400 is reserved for requests that are not even JSON.
func (h *WebhookHandler) HandleMercadoPago(c *gin.Context) {
	var payload domain.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Malformed payload", nil)
		return
	}

	h.webhookSvc.ProcessNotification(c.Request.Context(), &payload)

	// Internal outcome never leaks; the body stays a minimal ack
	common.SuccessResponse(c, gin.H{"received": true})
}
