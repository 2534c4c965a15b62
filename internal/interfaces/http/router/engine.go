package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the endpoint groups served by the engine
type Handlers struct {
	Reservation  *handler.ReservationHandler
	Availability *handler.AvailabilityHandler
	Maintenance  *handler.MaintenanceHandler
	Health       *handler.HealthHandler
}

// EngineConfig configures the middleware stack
type EngineConfig struct {
	ServiceName    string
	Release        bool
	TrustedProxies []string
	MaxBodySize    int64
	RequestTimeout time.Duration

	// RateLimiter is optional; the caller owns Stop
	RateLimiter *middleware.RateLimiter

	TracingEnabled bool
	// Meter enables HTTP metrics when non-nil
	Meter metric.Meter

	// JWT guards the API when non-nil. Reservation and availability routes
	// need auth.ScopeReserve, maintenance routes auth.ScopeMaintenance.
	JWT *auth.JWTService

	Swagger middleware.SwaggerConfig
	Logger  *zap.Logger
}

// NewEngine builds the gin engine with the full middleware chain and every
// route registered
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	// Order matters: the span must exist before the request logger reads
	// trace ids, and recovery must sit inside the logger so panics are logged
	// with their request ID.
	engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled))
	engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	engine.NoRoute(middleware.NoRoute())

	if h.Health != nil {
		engine.GET("/health", h.Health.Live)
		engine.GET("/health/ready", h.Health.Ready)
	}

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"))
	var groups []*DomainGroup

	if h.Reservation != nil {
		reservations := NewDomainGroup("reservations", "/reservations").
			Use(serviceAuth(cfg, auth.ScopeReserve, log), middleware.SpanEnricher())
		reservations.POST("", h.Reservation.Reserve)
		reservations.GET("/orders/:order_id", h.Reservation.ListByOrder)
		reservations.POST("/orders/:order_id/confirm", h.Reservation.Confirm)
		reservations.POST("/orders/:order_id/cancel", h.Reservation.Cancel)
		groups = append(groups, reservations)
	}

	if h.Availability != nil {
		inventory := NewDomainGroup("inventory", "/inventory").
			Use(serviceAuth(cfg, auth.ScopeReserve, log))
		inventory.GET("/availability", h.Availability.GetAvailability)
		groups = append(groups, inventory)
	}

	if h.Maintenance != nil {
		maintenance := NewDomainGroup("maintenance", "/maintenance").
			Use(serviceAuth(cfg, auth.ScopeMaintenance, log), middleware.SpanEnricher())
		maintenance.POST("/reservations/cleanup", h.Maintenance.CleanupExpired)
		maintenance.POST("/products/archive", h.Maintenance.ArchiveProducts)
		groups = append(groups, maintenance)
	}

	for _, g := range groups {
		r.Register(g)
		log.Debug("Registered API routes",
			zap.String("group", g.Name()),
			zap.String("base_path", r.BasePath()),
			zap.Strings("routes", g.Routes()),
			zap.Bool("auth", cfg.JWT != nil),
		)
	}
	r.Setup()
	return engine, nil
}

// serviceAuth returns nil when no JWT service is configured
func serviceAuth(cfg EngineConfig, scope string, log *zap.Logger) gin.HandlerFunc {
	if cfg.JWT == nil {
		return nil
	}
	return middleware.ServiceAuth(middleware.ServiceAuthConfig{
		JWTService:    cfg.JWT,
		RequiredScope: scope,
		Logger:        log,
	})
}
