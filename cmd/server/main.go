package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	invapp "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Inventory Reservation API
//	@version		1.0
//	@description	Holds SKU stock for orders, confirms or releases the holds and reports availability.

//	@contact.name	API Support
//	@contact.url	https://github.com/storefront/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Service token. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting inventory reservation service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: logger.MapGormLogLevel(cfg.Log.Level),
		Tracing:  dbTracingConfig(cfg),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver))

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	skuRepo := persistence.NewGormSKURepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	txScope := db.NewTransactionScope()

	// Availability cache
	availabilityCache, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx, cfg.Cache.Backend)
	if err != nil {
		log.Fatal("Failed to create availability cache", zap.Error(err))
	}

	// Lifecycle events
	publisher, closePublisher := newEventPublisher(ctx, cfg, log)

	// Metrics
	var meter metric.Meter
	if mp.IsEnabled() {
		meter = mp.Meter("inventory-reservation")
	}
	reservationMetrics, err := telemetry.NewReservationMetrics(mp.Meter("inventory-reservation"))
	if err != nil {
		log.Fatal("Failed to register reservation metrics", zap.Error(err))
	}

	// Application services
	policy := retryPolicy(cfg.Reservation)

	reservationService := invapp.NewReservationService(txScope, reservationRepo, policy, cfg.Reservation.TTL, log)
	reservationService.SetEventPublisher(publisher)
	reservationService.SetAvailabilityCache(availabilityCache)
	reservationService.SetMetrics(reservationMetrics)

	sweeper := invapp.NewExpirySweeper(txScope, reservationRepo, policy, cfg.Sweeper.BatchSize, log)
	sweeper.SetEventPublisher(publisher)
	sweeper.SetAvailabilityCache(availabilityCache)
	sweeper.SetMetrics(reservationMetrics)

	archivalService := invapp.NewArchivalService(productRepo, cfg.Archival.BatchSize, log)
	archivalService.SetEventPublisher(publisher)
	archivalService.SetMetrics(reservationMetrics)

	availabilityService := invapp.NewAvailabilityService(skuRepo, availabilityCache, cfg.Cache.AvailabilityTTL, log)

	// HTTP layer
	var jwtService *auth.JWTService
	if cfg.JWT.Enabled {
		jwtService = auth.NewJWTService(cfg.JWT)
	} else {
		log.Warn("Service token authentication disabled")
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Release:        cfg.App.IsProduction(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		RateLimiter:    limiter,
		TracingEnabled: tp.IsEnabled(),
		Meter:          meter,
		JWT:            jwtService,
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
		Logger: log,
	}, router.Handlers{
		Reservation:  handler.NewReservationHandler(reservationService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Maintenance:  handler.NewMaintenanceHandler(sweeper, archivalService),
		Health:       handler.NewHealthHandler(db, version),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	closePublisher(shutdownCtx)
	if err := availabilityCache.Close(); err != nil {
		log.Error("Error closing availability cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

// newEventPublisher returns the Kafka publisher when enabled and otherwise an
// in-process bus that logs each lifecycle event. The returned func releases it.
func newEventPublisher(ctx context.Context, cfg *config.Config, log *zap.Logger) (shared.EventPublisher, func(context.Context)) {
	if cfg.Kafka.Enabled {
		writer := event.NewKafkaWriter(event.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		publisher := event.NewKafkaPublisher(writer, event.NewEventSerializer(), log)
		log.Info("Publishing lifecycle events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
		return publisher, func(context.Context) {
			if err := publisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}
	}

	bus := event.NewInMemoryEventBus(log)
	logHandler := event.NewLifecycleLogHandler(log)
	bus.Subscribe(logHandler, logHandler.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	return bus, func(ctx context.Context) {
		if err := bus.Stop(ctx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}
}

func retryPolicy(cfg config.ReservationConfig) invapp.RetryPolicy {
	policy := invapp.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.MaxAttempts
	policy.AttemptTimeout = cfg.AttemptTimeout
	policy.InitialInterval = cfg.InitialBackoff
	policy.MaxInterval = cfg.MaxBackoff
	policy.RandomizationFactor = cfg.Jitter
	return policy
}

func dbTracingConfig(cfg *config.Config) *telemetry.DBTracingConfig {
	if !cfg.Telemetry.Enabled || !cfg.Telemetry.DBTraceEnabled {
		return nil
	}
	tracing := telemetry.DefaultDBTracingConfig()
	tracing.Enabled = true
	tracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		tracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if cfg.Database.Driver == config.DriverSQLite {
		tracing.DBSystem = "sqlite"
	}
	return &tracing
}
