package app

import (
	"github.com/gin-gonic/gin"

	httpapi "github.com/kiwiz-app/kiwiz-backend/internal/http"
	"github.com/kiwiz-app/kiwiz-backend/internal/observability"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if cfg.Observability.OtelEnabled {
		serviceName = cfg.Observability.ServiceName
	}
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORS.Origins,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		GenerationHandler: handlers.Generation,
		WorksheetHandler:  handlers.Worksheet,
		PromptsHandler:    handlers.Prompts,
		AnalyticsHandler:  handlers.Analytics,
		MembershipHandler: handlers.Membership,
		UserHandler:       handlers.User,
		NewsletterHandler: handlers.Newsletter,
		AdminHandler:      handlers.Admin,
	})
}
