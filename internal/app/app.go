package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/db"
	httpapi "github.com/kiwiz-app/kiwiz-backend/internal/http"
	"github.com/kiwiz-app/kiwiz-backend/internal/observability"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	dbService     *db.Service
	server        *httpapi.Server
	otelShutdown  func(context.Context) error
	collectorStop context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger(mode string) (*logger.Logger, error) {
	if strings.TrimSpace(mode) == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects to the configured database and optionally migrates it.
func OpenDB(log *logger.Logger, cfg Config, migrate bool) (*db.Service, error) {
	svc, err := db.NewService(cfg.Database.DB(), log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if migrate {
		if err := svc.AutoMigrateAll(); err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	return svc, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := observability.Init(cfg.Observability.MetricsEnabled)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Observability.OtelEnabled,
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Observability.Environment,
		Version:     cfg.Observability.Version,
		Endpoint:    cfg.Observability.OtelEndpoint,
		Headers:     cfg.Observability.OtelHeaders,
		Insecure:    cfg.Observability.OtelInsecure,
		SampleRatio: cfg.Observability.OtelSampleRatio,
	})

	dbService, err := OpenDB(log, cfg, cfg.Server.AutoMigrate)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	theDB := dbService.DB()
	if err := metrics.RegisterDB(theDB, cfg.Database.Name); err != nil {
		log.Warn("db metrics not registered", "error", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		_ = clients.Close()
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, clients.Verifier != nil)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset, middleware)

	server := httpapi.NewServer(log, httpapi.ServerConfig{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, router)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		dbService:    dbService,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}

	collectorCtx, cancel := context.WithCancel(ctx)
	a.collectorStop = cancel
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(collectorCtx, a.Log, a.Clients.Redis, 15*time.Second)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run)
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.collectorStop != nil {
		a.collectorStop()
		a.collectorStop = nil
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("closing clients", "error", err)
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("closing database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
