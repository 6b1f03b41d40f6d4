package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiwiz-app/kiwiz-backend/internal/http/response"
	"github.com/kiwiz-app/kiwiz-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// POST /api/analytics/track
// body: { "action": "download_tracing", "content": "B", "properties": {...} }
func (ah *AnalyticsHandler) Track(c *gin.Context) {
	var in services.TrackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid analytics payload"))
		return
	}
	if err := ah.analytics.Track(c.Request.Context(), in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
