package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	authConfigured bool
}

func NewHealthHandler(authConfigured bool) *HealthHandler {
	return &HealthHandler{authConfigured: authConfigured}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/auth/health
func (h *HealthHandler) AuthHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "authConfigured": h.authConfigured})
}
