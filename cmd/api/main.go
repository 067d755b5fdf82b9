package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tatame/tatame-backend/api"
	"github.com/tatame/tatame-backend/api/routes"
	"github.com/tatame/tatame-backend/internal/appstores"
	"github.com/tatame/tatame-backend/internal/assets"
	"github.com/tatame/tatame-backend/internal/checkins"
	"github.com/tatame/tatame-backend/internal/classes"
	"github.com/tatame/tatame-backend/internal/graduations"
	"github.com/tatame/tatame-backend/internal/gyms"
	"github.com/tatame/tatame-backend/internal/notifications"
	"github.com/tatame/tatame-backend/internal/roles"
	"github.com/tatame/tatame-backend/internal/subscriptions"
	"github.com/tatame/tatame-backend/internal/uploads"
	"github.com/tatame/tatame-backend/internal/users"
	"github.com/tatame/tatame-backend/internal/versions"
	stripewebhook "github.com/tatame/tatame-backend/internal/webhooks/stripe"
	"github.com/tatame/tatame-backend/pkg/auth"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/db"
	"github.com/tatame/tatame-backend/pkg/email"
	"github.com/tatame/tatame-backend/pkg/instance"
	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/metrics"
	"github.com/tatame/tatame-backend/pkg/migrate"
	"github.com/tatame/tatame-backend/pkg/observability"
	"github.com/tatame/tatame-backend/pkg/push"
	"github.com/tatame/tatame-backend/pkg/redis"
	"github.com/tatame/tatame-backend/pkg/storage/gcs"
	"github.com/tatame/tatame-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flushSentry, sentryOn, err := observability.InitSentry(cfg.Sentry, cfg.App.Env, instance.GetID())
	if err != nil {
		logg.Error(ctx, "sentry init failed, continuing without error reporting", err)
	}
	defer flushSentry()

	location, err := cfg.App.Location()
	if err != nil {
		logg.Error(ctx, "invalid app timezone", err)
		os.Exit(1)
	}
	clk := clock.New(location)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	verifier, err := auth.NewVerifier(cfg.Identity)
	if err != nil {
		logg.Error(ctx, "failed to create identity verifier", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap gcs client", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs client", err)
		}
	}()

	pushClient, err := push.NewClient(cfg.Push)
	if err != nil {
		logg.Error(ctx, "failed to create push client", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)

	notificationService, err := notifications.NewService(notifications.ServiceParams{
		Repo:    notifications.NewRepository(conn),
		Users:   usersRepo,
		Pusher:  pushClient,
		Clock:   clk,
		Logger:  logg,
		Metrics: metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
	})
	mustService(ctx, logg, "notifications", err)

	userService, err := users.NewService(users.ServiceParams{
		Repo:     usersRepo,
		Notifier: notificationService,
		Clock:    clk,
		Logger:   logg,
	})
	mustService(ctx, logg, "users", err)

	roleService, err := roles.NewService(usersRepo)
	mustService(ctx, logg, "roles", err)

	gymService, err := gyms.NewService(gyms.NewRepository(conn), dbClient)
	mustService(ctx, logg, "gyms", err)

	classService, err := classes.NewService(classes.NewRepository(conn), clk)
	mustService(ctx, logg, "classes", err)

	checkInService, err := checkins.NewService(checkins.NewRepository(conn), clk)
	mustService(ctx, logg, "checkins", err)

	graduationService, err := graduations.NewService(graduations.NewRepository(conn))
	mustService(ctx, logg, "graduations", err)

	versionService, err := versions.NewService(versions.NewRepository(conn), clk)
	mustService(ctx, logg, "versions", err)

	appStoreService, err := appstores.NewService(appstores.NewRepository(conn), clk)
	mustService(ctx, logg, "app stores", err)

	assetService, err := assets.NewService(assets.NewRepository(conn), gcsClient, clk, logg)
	mustService(ctx, logg, "assets", err)

	uploadService, err := uploads.NewService(uploads.ServiceParams{
		Signer: gcsClient,
		Users:  usersRepo,
		Gyms:   gymService,
		Clock:  clk,
		Expiry: cfg.GCS.UploadURLExpiry,
	})
	mustService(ctx, logg, "uploads", err)

	params := routes.Params{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sentry:        sentryOn,
		Verifier:      verifier,
		ActorLookup:   usersRepo,
		Idempotency:   redisClient,
		HTTPMetrics:   metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Users:         userService,
		Roles:         roleService,
		Gyms:          gymService,
		Classes:       classService,
		CheckIns:      checkInService,
		Graduations:   graduationService,
		Notifications: notificationService,
		Versions:      versionService,
		AppStores:     appStoreService,
		Assets:        assetService,
		Uploads:       uploadService,
	}
	wireStripe(ctx, cfg, logg, redisClient, usersRepo, &params)

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, routes.NewRouter(params))
	if err := api.Serve(ctx, server, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// wireStripe enables billing routes and the webhook when Stripe credentials
// are configured; without them those handlers answer with an error.
func wireStripe(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, usersRepo *users.Repository, params *routes.Params) {
	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "reason", err.Error()), "stripe disabled")
		return
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Users:          usersRepo,
		Stripe:         subscriptions.NewStripeClient(stripeClient),
		DefaultPriceID: stripeClient.DefaultPriceID(),
		Logger:         logg,
	})
	mustService(ctx, logg, "subscriptions", err)

	webhookParams := stripewebhook.ServiceParams{Users: usersRepo, Logger: logg}
	if mailer, err := email.NewClient(cfg.Sendgrid, logg); err != nil {
		logg.Warn(logg.WithField(ctx, "reason", err.Error()), "welcome email disabled")
	} else {
		webhookParams.Mailer = mailer
	}
	webhookService, err := stripewebhook.NewService(webhookParams)
	mustService(ctx, logg, "stripe webhook", err)

	ledger, err := stripewebhook.NewEventLedger(redisClient, stripewebhook.DefaultLedgerTTL)
	mustService(ctx, logg, "stripe event ledger", err)

	params.Subscriptions = subscriptionService
	params.StripeWebhook = webhookService
	params.StripeSecret = stripeClient
	params.StripeEventLedger = ledger
}

func mustService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "service", name), "failed to create service", err)
	os.Exit(1)
}
