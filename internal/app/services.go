package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/prompts"
	"github.com/kiwiz-app/kiwiz-backend/internal/services"
	"github.com/kiwiz-app/kiwiz-backend/internal/tracing"
)

type Services struct {
	Auth       services.AuthService
	Usage      services.UsageService
	Tracing    services.TracingService
	Coloring   services.ColoringService
	User       services.UserService
	Newsletter services.NewsletterService
	Membership services.MembershipService
	Analytics  services.AnalyticsService
	Admin      services.AdminService

	Catalog   *prompts.Catalog
	Worksheet *tracing.Worksheet
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := prompts.Load()
	if err != nil {
		return Services{}, fmt.Errorf("load prompt catalog: %w", err)
	}
	worksheet, err := tracing.NewWorksheet()
	if err != nil {
		return Services{}, fmt.Errorf("init worksheet renderer: %w", err)
	}

	freeLimit := cfg.Usage.FreeDailyLimit
	admins := services.NewAdminPolicy(cfg.Auth.AdminEmails)

	usage := services.NewUsageService(log, clients.Limiter, repos.User, repos.Analytics, freeLimit)
	users := services.NewUserService(log, repos.User, usage, admins)

	return Services{
		Auth:       services.NewAuthService(log, clients.Verifier, repos.User, admins),
		Usage:      usage,
		Tracing:    services.NewTracingService(log, usage),
		Coloring:   services.NewColoringService(log, usage, catalog, clients.Images, clients.Store),
		User:       users,
		Newsletter: services.NewNewsletterService(db, log, users, repos.User, repos.Newsletter, clients.Mailer),
		Membership: services.NewMembershipService(log, repos.User, freeLimit),
		Analytics:  services.NewAnalyticsService(log, repos.Analytics),
		Admin:      services.NewAdminService(log, repos.User, repos.Newsletter, repos.Analytics),
		Catalog:    catalog,
		Worksheet:  worksheet,
	}, nil
}
