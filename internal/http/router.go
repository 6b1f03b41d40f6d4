package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/kiwiz-app/kiwiz-backend/internal/http/handlers"
	httpMW "github.com/kiwiz-app/kiwiz-backend/internal/http/middleware"
	"github.com/kiwiz-app/kiwiz-backend/internal/observability"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	GenerationHandler *httpH.GenerationHandler
	WorksheetHandler  *httpH.WorksheetHandler
	PromptsHandler    *httpH.PromptsHandler
	AnalyticsHandler  *httpH.AnalyticsHandler
	MembershipHandler *httpH.MembershipHandler
	UserHandler       *httpH.UserHandler
	NewsletterHandler *httpH.NewsletterHandler
	AdminHandler      *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/api/auth/health", cfg.HealthHandler.AuthHealth)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	optional, requireAuth, requireAdmin := passThrough, passThrough, passThrough
	if cfg.AuthMiddleware != nil {
		optional = cfg.AuthMiddleware.OptionalAuth()
		requireAuth = cfg.AuthMiddleware.RequireAuth()
		requireAdmin = cfg.AuthMiddleware.RequireAdmin()
	}

	api := r.Group("/api")
	public := api.Group("/", optional)
	{
		if cfg.GenerationHandler != nil {
			public.POST("/generate-tracing", cfg.GenerationHandler.GenerateTracing)
			public.POST("/generate-coloring", cfg.GenerationHandler.GenerateColoring)
		}
		if cfg.WorksheetHandler != nil {
			public.GET("/worksheets/tracing.png", cfg.WorksheetHandler.TracingPNG)
		}
		if cfg.PromptsHandler != nil {
			public.GET("/prompts/:kind", cfg.PromptsHandler.List)
		}
		if cfg.AnalyticsHandler != nil {
			public.POST("/analytics/track", cfg.AnalyticsHandler.Track)
		}
		if cfg.MembershipHandler != nil {
			public.GET("/membership/plans", cfg.MembershipHandler.Plans)
		}
	}

	protected := api.Group("/", requireAuth)
	{
		if cfg.UserHandler != nil {
			protected.GET("/user", cfg.UserHandler.Sync)
			protected.GET("/user/me", cfg.UserHandler.GetMe)
			protected.GET("/user/usage", cfg.UserHandler.GetUsage)
		}
		if cfg.NewsletterHandler != nil {
			protected.POST("/subscribe-newsletter", cfg.NewsletterHandler.Subscribe)
			protected.DELETE("/subscribe-newsletter", cfg.NewsletterHandler.Unsubscribe)
		}
	}

	admin := r.Group("/admin", requireAuth, requireAdmin)
	{
		if cfg.AdminHandler != nil {
			admin.GET("/stats", cfg.AdminHandler.Stats)
			admin.GET("/users", cfg.AdminHandler.Users)
			admin.PATCH("/users/:id/plan", cfg.AdminHandler.SetPlan)
		}
	}

	return r
}

func passThrough(c *gin.Context) { c.Next() }
