package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
)

// AttachRequestContext starts every request as anonymous, keyed by client IP.
// Auth middleware replaces it once a token is verified.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{ClientKey: c.ClientIP()}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
