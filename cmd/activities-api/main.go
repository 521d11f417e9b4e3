package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mergington-activities/internal/api/activities"
	"mergington-activities/internal/audit"
	awsclient "mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/events"
	"mergington-activities/internal/notify"
	"mergington-activities/internal/registry"
	"mergington-activities/pkg/catalog"

	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.NewFromConfig(cfg.Logging)
	if err != nil {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		zapLog.Warn("logging output unavailable, using default", zap.Error(err))
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activities API...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics exporter unavailable", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Activity registry ---
	reg, err := loadRegistry(cfg.Registry)
	if err != nil {
		zapLog.Fatal("activity registry failed to load", zap.Error(err))
	}
	zapLog.Info("Activity registry loaded",
		zap.Int("activities", reg.Len()),
		zap.String("catalog", cfg.Registry.CatalogPath),
	)

	checks := readinessChecks{}
	var sinks []events.Sink

	// --- Redis event feed ---
	if cfg.Events.Enabled {
		redis := database.NewRedis(cfg.Events.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")

		checks["redis"] = redis.Ping
		sinks = append(sinks, events.NewRedisPublisher(redis,
			cfg.Events.Channel, cfg.Events.RecentKey, cfg.Events.RecentLimit))
	}

	// --- PostgreSQL audit journal ---
	if cfg.Audit.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Audit.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		journal := audit.NewJournal(pg)
		if err := journal.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema setup failed", zap.Error(err))
		}
		checks["postgres"] = pg.Ping
		sinks = append(sinks, journal)
	}

	// --- SES notifications ---
	if cfg.Notifications.Enabled {
		ses, err := awsclient.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		sinks = append(sinks, notify.NewEmailNotifier(ses, cfg.Notifications.FromEmail))
	}

	dispatcher := events.NewDispatcher(log, config.GetDuration(cfg.Events.Timeout), sinks...)
	zapLog.Info("Participant event sinks configured", zap.Strings("sinks", dispatcher.Sinks()))

	svc := activities.NewService(activities.ServiceDependencies{
		Registry:      reg,
		Dispatcher:    dispatcher,
		Logger:        log,
		Observability: obs,
	})
	svc.SyncParticipantGauges()

	handler, err := activities.NewHandler(activities.HandlerOptions{
		Config: &activities.Config{
			LandingPath:    cfg.Server.LandingPath,
			StaticDir:      cfg.Server.StaticDir,
			RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
		},
		Service: svc,
		Logger:  log,
	})
	if err != nil {
		zapLog.Fatal("failed to create activities handler", zap.Error(err))
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(handler, checks),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Activities API stopped gracefully")
}

// loadRegistry uses the catalog file when one is configured, the built-in
// seed otherwise.
func loadRegistry(cfg config.RegistryConfig) (*registry.Registry, error) {
	if cfg.CatalogPath == "" {
		return registry.NewDefault(), nil
	}
	c, err := catalog.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return registry.New(c.ToActivities())
}
