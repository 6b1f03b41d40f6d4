package observability

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

// Metrics holds the service's collectors on a private registry. All methods
// are safe on a nil receiver so callers never need to check whether metrics
// are enabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	generations   *prometheus.CounterVec
	directives    *prometheus.CounterVec
	imageRequests *prometheus.CounterVec
	imageLatency  *prometheus.HistogramVec
	quotaRejected *prometheus.CounterVec
	redisUp       prometheus.Gauge
	redisPing     prometheus.Gauge
}

var (
	initMu   sync.Mutex
	instance *Metrics
)

func Current() *Metrics {
	initMu.Lock()
	defer initMu.Unlock()
	return instance
}

// Init builds the process-wide Metrics once. It returns nil when disabled.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initMu.Lock()
	defer initMu.Unlock()
	if instance == nil {
		instance = NewMetrics()
	}
	return instance
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiwiz_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kiwiz_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiwiz_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiwiz_generations_total",
			Help: "Generation attempts by kind (coloring/tracing) and outcome.",
		}, []string{"kind", "outcome"}),
		directives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiwiz_tracing_directives_total",
			Help: "Interpreted tracing directives by type, style and matching rule.",
		}, []string{"type", "style", "rule"}),
		imageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiwiz_image_requests_total",
			Help: "Upstream image generation requests by model/status.",
		}, []string{"model", "status"}),
		imageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kiwiz_image_request_duration_seconds",
			Help:    "Upstream image generation latency in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"model"}),
		quotaRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiwiz_quota_rejected_total",
			Help: "Generations rejected by the daily free limit, by caller type.",
		}, []string{"caller"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiwiz_redis_up",
			Help: "1 when the last Redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiwiz_redis_ping_seconds",
			Help: "Latency of the last Redis ping.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.generations, m.directives,
		m.imageRequests, m.imageLatency,
		m.quotaRejected, m.redisUp, m.redisPing,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncGeneration(kind, outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncDirective(typ, style, rule string) {
	if m == nil {
		return
	}
	m.directives.WithLabelValues(typ, style, rule).Inc()
}

func (m *Metrics) ObserveImageRequest(model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.imageRequests.WithLabelValues(model, status).Inc()
	m.imageLatency.WithLabelValues(model).Observe(dur.Seconds())
}

func (m *Metrics) IncQuotaRejected(caller string) {
	if m == nil {
		return
	}
	m.quotaRejected.WithLabelValues(caller).Inc()
}

// RegisterDB exposes database/sql pool statistics for db.
func (m *Metrics) RegisterDB(db *gorm.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return m.registry.Register(collectors.NewDBStatsCollector(sqlDB, name))
}

// StartRedisCollector pings rdb every interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil && ctx.Err() == nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
