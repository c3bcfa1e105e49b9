package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agendly/agendly-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.InitStructured("production")

	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)

	r.Use(RequestLogger())
	var seen string
	r.GET("/test", func(c *gin.Context) {
		seen = c.GetString("request_id")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	c.Request, _ = http.NewRequest("GET", "/test", nil)
	c.Request.Header.Set("X-Request-ID", "req-abc")
	r.ServeHTTP(w, c.Request)

	if w.Header().Get("X-Request-ID") != "req-abc" {
		t.Errorf("expected request id echoed in header, got %q", w.Header().Get("X-Request-ID"))
	}
	if seen != "req-abc" {
		t.Errorf("expected request id in context, got %q", seen)
	}
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.InitStructured("production")

	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)

	r.Use(RequestLogger())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	c.Request, _ = http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, c.Request)

	if got := w.Header().Get("X-Request-ID"); len(got) != 8 {
		t.Errorf("expected generated 8-char request id, got %q", got)
	}
}

func TestTenantContextAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetTenant(c) != nil {
		t.Error("expected nil tenant on empty context")
	}
	if GetTenantID(c) != "" {
		t.Error("expected empty tenant id on empty context")
	}

	c.Set("tenant", TenantContext{TenantID: "t-1", Subdomain: "acme"})
	c.Set("tenant_id", "t-1")

	tc := GetTenant(c)
	if tc == nil || tc.Subdomain != "acme" {
		t.Fatalf("unexpected tenant context: %+v", tc)
	}
	if GetTenantID(c) != "t-1" {
		t.Errorf("expected tenant id t-1, got %q", GetTenantID(c))
	}
}
