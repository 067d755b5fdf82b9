// Command cron-worker runs the scheduled jobs. With -once it runs a single
// job immediately and exits, which is how operators replay a missed day.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tatame/tatame-backend/internal/assets"
	"github.com/tatame/tatame-backend/internal/cron"
	"github.com/tatame/tatame-backend/internal/notifications"
	"github.com/tatame/tatame-backend/internal/users"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/db"
	"github.com/tatame/tatame-backend/pkg/instance"
	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/metrics"
	"github.com/tatame/tatame-backend/pkg/migrate"
	"github.com/tatame/tatame-backend/pkg/observability"
	"github.com/tatame/tatame-backend/pkg/push"
	"github.com/tatame/tatame-backend/pkg/redis"
	"github.com/tatame/tatame-backend/pkg/storage/gcs"
)

const serviceName = "cron-worker"

func main() {
	once := flag.String("once", "", "run the named job ("+cron.BirthdayJobName+", "+cron.AssetCleanupJobName+") once and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "cron-worker: no .env file, using the environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *once); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "cron-worker:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, once string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Service.Kind = serviceName

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	flushSentry, _, err := observability.InitSentry(cfg.Sentry, cfg.App.Env, instance.GetID())
	if err != nil {
		logg.Error(ctx, "sentry disabled", err)
	}
	defer flushSentry()

	location, err := cfg.App.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeQuietly(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer closeQuietly(logg, "redis", redisClient.Close)

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return fmt.Errorf("gcs: %w", err)
	}

	pushClient, err := push.NewClient(cfg.Push)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	clk := clock.New(location)
	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)

	notifier, err := notifications.NewService(notifications.ServiceParams{
		Repo:    notifications.NewRepository(conn),
		Users:   usersRepo,
		Pusher:  pushClient,
		Clock:   clk,
		Logger:  logg,
		Metrics: metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return err
	}
	assetService, err := assets.NewService(assets.NewRepository(conn), gcsClient, clk, logg)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg.Cron.Schedule, logg, clk, usersRepo, notifier, assetService)
	if err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	lock, err := cron.NewRedisLock(redisClient, 0)
	if err != nil {
		return err
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Location: location,
	})
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"schedule": cfg.Cron.Schedule,
		"timezone": location.String(),
	})

	if once != "" {
		return service.RunNow(ctx, once)
	}

	if cfg.Cron.MetricsAddr != "" {
		stopMetrics := serveMetrics(ctx, logg, cfg.Cron.MetricsAddr)
		defer stopMetrics()
	}

	logg.Info(ctx, "cron worker started")
	err = service.Run(ctx)
	logg.Info(ctx, "cron worker stopped")
	return err
}

// serveMetrics exposes the default registry so the job counters are scraped.
func serveMetrics(ctx context.Context, logg *logger.Logger, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics listener failed", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func closeQuietly(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "closing "+name, err)
	}
}

func buildRegistry(
	schedule string,
	logg *logger.Logger,
	clk clock.Clock,
	usersRepo *users.Repository,
	notifier notifications.Service,
	assetService assets.Service,
) (*cron.Registry, error) {
	birthdays, err := cron.NewBirthdayJob(cron.BirthdayJobParams{
		Logger:   logg,
		Users:    usersRepo,
		Notifier: notifier,
		Clock:    clk,
	})
	if err != nil {
		return nil, err
	}
	cleanup, err := cron.NewAssetCleanupJob(cron.AssetCleanupJobParams{
		Logger: logg,
		Assets: assetService,
	})
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()
	for _, job := range []cron.Job{birthdays, cleanup} {
		if err := registry.Register(schedule, job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
