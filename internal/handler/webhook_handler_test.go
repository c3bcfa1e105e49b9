package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agendly/agendly-backend/internal/domain"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/agendly/agendly-backend/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newWebhookRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Tenant{}, &domain.Subscription{}, &domain.Payment{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	subRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	subSvc := service.NewSubscriptionService(db, subRepo, tenantRepo, nil, testBillingConfig())
	webhookSvc := service.NewWebhookService(paymentRepo, subRepo, subSvc, failingGateway{})

	r := gin.New()
	r.POST("/api/v1/webhooks/mercadopago", NewWebhookHandler(webhookSvc).HandleMercadoPago)
	return r
}

func TestHandleMercadoPago_AlwaysAcks(t *testing.T) {
	r := newWebhookRouter(t)

	// Unresolvable payment still gets a 200 so the provider stops retrying
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhooks/mercadopago",
		strings.NewReader(`{"type":"payment","data":{"id":"mp-unknown"}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"received":true`) {
		t.Errorf("expected ack body, got %s", w.Body.String())
	}
}

func TestHandleMercadoPago_NonPaymentAcks(t *testing.T) {
	r := newWebhookRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhooks/mercadopago",
		strings.NewReader(`{"type":"merchant_order","data":{"id":"mo-1"}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHandleMercadoPago_MalformedBody(t *testing.T) {
	r := newWebhookRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhooks/mercadopago",
		strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
