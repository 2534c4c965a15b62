package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	invapp "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	var (
		once bool
		job  string
	)
	flag.BoolVar(&once, "once", false, "Run the selected jobs once and exit")
	flag.StringVar(&job, "job", "", "Run only this job (cleanup_expired_reservations or archive_zero_stock_products)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("component", "sweeper"))

	if err := run(cfg, log, once, job); err != nil {
		log.Error("Sweeper failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, once bool, only string) error {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName + "-sweeper",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("meter provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mp.Shutdown(shutdownCtx)
	}()
	metrics, err := telemetry.NewReservationMetrics(mp.Meter("inventory-sweeper"))
	if err != nil {
		return fmt.Errorf("reservation metrics: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: logger.MapGormLogLevel(cfg.Log.Level),
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { _ = db.Close() }()

	availabilityCache, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx, cfg.Cache.Backend)
	if err != nil {
		return fmt.Errorf("availability cache: %w", err)
	}
	defer func() { _ = availabilityCache.Close() }()

	publisher, closePublisher := newEventPublisher(cfg, log)
	defer closePublisher()

	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	policy := invapp.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Reservation.MaxAttempts
	policy.AttemptTimeout = cfg.Reservation.AttemptTimeout
	policy.InitialInterval = cfg.Reservation.InitialBackoff
	policy.MaxInterval = cfg.Reservation.MaxBackoff
	policy.RandomizationFactor = cfg.Reservation.Jitter

	sweeper := invapp.NewExpirySweeper(db.NewTransactionScope(), reservationRepo, policy, cfg.Sweeper.BatchSize, log)
	sweeper.SetEventPublisher(publisher)
	sweeper.SetAvailabilityCache(availabilityCache)
	sweeper.SetMetrics(metrics)

	archival := invapp.NewArchivalService(persistence.NewGormProductRepository(db.DB), cfg.Archival.BatchSize, log)
	archival.SetEventPublisher(publisher)
	archival.SetMetrics(metrics)

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		MaxConcurrentJobs: 2,
		JobTimeout:        cfg.Sweeper.JobTimeout,
		RetryAttempts:     1,
		RetryDelay:        10 * time.Second,
	}, log)

	type schedule struct {
		name     string
		enabled  bool
		interval time.Duration
	}
	schedules := []schedule{
		{scheduler.JobCleanupExpiredReservations, cfg.Sweeper.Enabled, cfg.Sweeper.Interval},
		{scheduler.JobArchiveZeroStockProducts, cfg.Archival.Enabled, cfg.Archival.Interval},
	}
	sched.Register(scheduler.JobCleanupExpiredReservations, scheduler.CleanupJob(sweeper, metrics, log))
	sched.Register(scheduler.JobArchiveZeroStockProducts, scheduler.ArchivalJob(archival))

	selected := make([]schedule, 0, len(schedules))
	for _, s := range schedules {
		if only != "" {
			if s.name == only {
				s.enabled = true
				selected = append(selected, s)
			}
			continue
		}
		if s.enabled {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		if only != "" {
			return fmt.Errorf("unknown job %q", only)
		}
		log.Warn("No maintenance jobs enabled, exiting")
		return nil
	}

	if once {
		for _, s := range selected {
			if err := sched.RunNow(ctx, s.name); err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			log.Info("Job completed", zap.String("job", s.name))
		}
		return nil
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	triggers := make([]*scheduler.IntervalTrigger, 0, len(selected))
	for _, s := range selected {
		trigger := scheduler.NewIntervalTrigger(s.name, s.interval, true, sched, log)
		if err := trigger.Start(ctx); err != nil {
			return err
		}
		triggers = append(triggers, trigger)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down sweeper...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, trigger := range triggers {
		_ = trigger.Stop(shutdownCtx)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	log.Info("Sweeper exited")
	return nil
}

func newEventPublisher(cfg *config.Config, log *zap.Logger) (shared.EventPublisher, func()) {
	if cfg.Kafka.Enabled {
		publisher := event.NewKafkaPublisher(event.NewKafkaWriter(event.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}), event.NewEventSerializer(), log)
		return publisher, func() { _ = publisher.Close() }
	}
	bus := event.NewInMemoryEventBus(log)
	logHandler := event.NewLifecycleLogHandler(log)
	bus.Subscribe(logHandler, logHandler.EventTypes()...)
	_ = bus.Start(context.Background())
	return bus, func() { _ = bus.Stop(context.Background()) }
}
