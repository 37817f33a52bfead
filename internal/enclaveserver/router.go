package enclaveserver

import (
	"log/slog"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/enclaved/internal/telemetry"
)

// RouterConfig carries the optional surface-level knobs for NewRouter.
// The zero value disables CORS and rate limiting and uses the default
// metrics namespace.
type RouterConfig struct {
	MetricsNamespace string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewRouter builds the Gin engine serving POST /encrypt, GET /health, and a
// 404 fallback, with request-ID, logging, CORS, rate-limit, and metrics
// middleware layered in that order. businessMetrics may be nil, in which
// case the /encrypt operation counters are not recorded.
func NewRouter(
	state *State,
	logger *slog.Logger,
	metricsProvider *telemetry.Provider,
	businessMetrics telemetry.BusinessMetrics,
	cfg RouterConfig,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(LoggerMiddleware(logger))

	if corsMiddleware := NewCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	if metricsProvider != nil {
		namespace := cfg.MetricsNamespace
		if namespace == "" {
			namespace = "enclave"
		}
		router.Use(telemetry.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), namespace))
	}

	healthGroup := &singleflight.Group{}

	router.POST("/encrypt", EncryptHandler(state, logger, businessMetrics))
	router.GET("/health", HealthHandler(state, healthGroup))
	router.NoRoute(NotFoundHandler)

	return router
}
