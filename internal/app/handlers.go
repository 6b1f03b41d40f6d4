package app

import (
	httpH "github.com/kiwiz-app/kiwiz-backend/internal/http/handlers"
	httpMW "github.com/kiwiz-app/kiwiz-backend/internal/http/middleware"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Generation *httpH.GenerationHandler
	Worksheet  *httpH.WorksheetHandler
	Prompts    *httpH.PromptsHandler
	Analytics  *httpH.AnalyticsHandler
	Membership *httpH.MembershipHandler
	User       *httpH.UserHandler
	Newsletter *httpH.NewsletterHandler
	Admin      *httpH.AdminHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
}

func wireHandlers(log *logger.Logger, services Services, authConfigured bool) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(authConfigured),
		Generation: httpH.NewGenerationHandler(services.Tracing, services.Coloring),
		Worksheet:  httpH.NewWorksheetHandler(log, services.Worksheet),
		Prompts:    httpH.NewPromptsHandler(services.Catalog),
		Analytics:  httpH.NewAnalyticsHandler(services.Analytics),
		Membership: httpH.NewMembershipHandler(services.Membership),
		User:       httpH.NewUserHandler(services.User),
		Newsletter: httpH.NewNewsletterHandler(services.Newsletter),
		Admin:      httpH.NewAdminHandler(services.Admin, services.Membership),
	}
}
