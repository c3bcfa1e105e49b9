package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/agendly/agendly-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// AdminAPIKey authenticates admin requests using a static API key.
// Checks the X-API-Key header. An empty configured key disables the
// admin surface entirely.
func AdminAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			common.ErrorResponse(c, http.StatusForbidden, "Admin API disabled", common.ErrForbidden)
			c.Abort()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "API key required", nil)
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid API key", common.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}
