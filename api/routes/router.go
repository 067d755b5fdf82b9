package routes

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tatame/tatame-backend/api/controllers"
	webhookcontrollers "github.com/tatame/tatame-backend/api/controllers/webhooks"
	"github.com/tatame/tatame-backend/api/middleware"
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
	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/metrics"
	pkgredis "github.com/tatame/tatame-backend/pkg/redis"
)

type signingSecretProvider interface {
	SigningSecret() string
}


// Params carries everything the router wires into handlers. A nil service
// makes its handlers answer with an error instead of panicking.
type Params struct {
	Config *config.Config
	Logger *logger.Logger
	DB     controllers.Pinger
	Redis  controllers.Pinger
	Sentry bool

	Verifier    middleware.TokenVerifier
	ActorLookup middleware.ActorLookup
	Idempotency pkgredis.IdempotencyStore
	HTTPMetrics *metrics.HTTPMetrics

	Users         users.Service
	Roles         roles.Service
	Gyms          gyms.Service
	Classes       classes.Service
	CheckIns      checkins.Service
	Graduations   graduations.Service
	Notifications notifications.Service
	Versions      versions.Service
	AppStores     appstores.Service
	Assets        assets.Service
	Uploads       uploads.Service
	Subscriptions subscriptions.Service

	StripeWebhook     webhookcontrollers.StripeWebhookService
	StripeSecret      signingSecretProvider
	StripeEventLedger webhookcontrollers.EventLedger
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	if p.Sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessChecks(p), logg))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/versions/latest", controllers.LatestVersion(p.Versions, logg))
		r.Get("/app-stores", controllers.ListAppStoreLinks(p.AppStores, logg))
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhook, p.StripeSecret, p.StripeEventLedger, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(p.Verifier, logg))
			r.Use(middleware.ResolveActor(p.ActorLookup, logg))
			r.Use(middleware.Idempotency(p.Idempotency, logg))

			// Identities without a user row may register and read themselves.
			r.Post("/users", controllers.CreateUser(p.Users, logg))
			r.Get("/users/me", controllers.GetCurrentUser(p.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireActor(logg))
				mountUsers(r, p)
				mountGyms(r, p)
				mountClasses(r, p)
				mountCheckIns(r, p)
				mountGraduations(r, p)
				mountNotifications(r, p)
				mountAdmin(r, p)
				mountAttachments(r, p)
				mountStripe(r, p)
			})
		})
	})

	return r
}

func managerOnly(logg *logger.Logger) func(http.Handler) http.Handler {
	return middleware.RequireRole(roles.IsHigherRole, logg)
}

func staffOnly(logg *logger.Logger) func(http.Handler) http.Handler {
	return middleware.RequireRole(roles.IsMediumRole, logg)
}

func mountUsers(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/users", func(r chi.Router) {
		r.Route("/gym/{gymId}", func(r chi.Router) {
			r.Use(middleware.RequireGymMember("gymId", logg))
			r.Get("/students", controllers.ListGymStudents(p.Users, logg))
			r.Get("/instructors", controllers.ListGymInstructors(p.Users, logg))
			r.With(staffOnly(logg)).Get("/pending", controllers.ListGymPending(p.Users, logg))
			r.Get("/birthdays", controllers.ListGymBirthdays(p.Users, logg))
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.GetUser(p.Users, logg))
			r.Get("/approval", controllers.GetUserApproval(p.Users, logg))
			r.Get("/role", controllers.GetUserRole(p.Roles, logg))
			r.Patch("/", controllers.UpdateUser(p.Users, logg))
			r.Put("/push-token", controllers.UpdatePushToken(p.Users, logg))
			r.Delete("/", controllers.DeleteUser(p.Users, logg))
			r.With(managerOnly(logg)).Post("/approve", controllers.ApproveUser(p.Users, logg))
			r.With(managerOnly(logg)).Post("/deny", controllers.DenyUser(p.Users, logg))
		})
	})
}

func mountGyms(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/gyms", func(r chi.Router) {
		r.Get("/", controllers.ListGyms(p.Gyms, logg))
		r.With(managerOnly(logg)).Post("/", controllers.CreateGym(p.Gyms, logg))
		r.Get("/manager/{userId}", controllers.GetGymByManager(p.Gyms, logg))
		r.Get("/{id}", controllers.GetGym(p.Gyms, logg))
		r.With(managerOnly(logg)).Patch("/{id}", controllers.UpdateGym(p.Gyms, logg))
	})
}

func mountClasses(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/class", func(r chi.Router) {
		r.With(managerOnly(logg)).Post("/", controllers.CreateClass(p.Classes, logg))
		r.Route("/gym/{gymId}", func(r chi.Router) {
			r.Get("/", controllers.ListGymClasses(p.Classes, logg))
			r.Get("/next", controllers.GetNextClass(p.Classes, logg))
			r.Get("/check-in", controllers.GetClassForCheckIn(p.Classes, logg))
		})
		r.Get("/{id}", controllers.GetClass(p.Classes, logg))
		r.With(managerOnly(logg)).Patch("/{id}", controllers.UpdateClass(p.Classes, logg))
		r.With(managerOnly(logg)).Delete("/{id}", controllers.DeleteClass(p.Classes, logg))
	})
}

func mountCheckIns(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/checkins", func(r chi.Router) {
		r.Post("/", controllers.CreateCheckIn(p.CheckIns, logg))
		r.Get("/user/{userId}", controllers.ListUserCheckIns(p.CheckIns, logg))
		r.Get("/class/{classId}", controllers.ListClassCheckIns(p.CheckIns, logg))
		r.Delete("/{id}", controllers.DeleteCheckIn(p.CheckIns, logg))
	})
}

func mountGraduations(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/graduations", func(r chi.Router) {
		r.With(staffOnly(logg)).Post("/", controllers.SetGraduation(p.Graduations, logg))
		r.Get("/user/{userId}", controllers.GetUserGraduation(p.Graduations, logg))
		r.With(staffOnly(logg)).Patch("/{id}", controllers.UpdateGraduation(p.Graduations, logg))
	})
}

func mountNotifications(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/notifications", func(r chi.Router) {
		r.With(managerOnly(logg)).Post("/", controllers.CreateNotification(p.Notifications, logg))
		r.With(managerOnly(logg)).Post("/{id}/resend", controllers.ResendNotification(p.Notifications, logg))
		r.Get("/unread", controllers.ListUnreadNotifications(p.Notifications, logg))
		r.Get("/sent", controllers.ListSentNotifications(p.Notifications, logg))
		r.Post("/{id}/view", controllers.ViewNotification(p.Notifications, logg))
	})
}

func mountAdmin(r chi.Router, p Params) {
	logg := p.Logger
	r.Group(func(r chi.Router) {
		r.Use(managerOnly(logg))
		r.Post("/versions", controllers.CreateVersion(p.Versions, logg))
		r.Post("/versions/{id}/disable", controllers.DisableVersion(p.Versions, logg))
		r.Post("/app-stores", controllers.CreateAppStoreLink(p.AppStores, logg))
		r.Post("/app-stores/{id}/disable", controllers.DisableAppStoreLink(p.AppStores, logg))
	})
}

func mountAttachments(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/attachments", func(r chi.Router) {
		r.With(staffOnly(logg)).Post("/", controllers.CreateAttachment(p.Assets, logg))
		r.With(staffOnly(logg)).Post("/upload-url", controllers.CreateAttachmentUploadURL(p.Uploads, logg))
		r.Get("/class/{classId}", controllers.ListClassAttachments(p.Assets, logg))
		r.Get("/{id}", controllers.GetAttachment(p.Assets, logg))
		r.With(staffOnly(logg)).Delete("/{id}", controllers.DeleteAttachment(p.Assets, logg))
	})

	r.Route("/uploads", func(r chi.Router) {
		r.Post("/profile-picture", controllers.UploadProfilePicture(p.Uploads, logg))
		r.With(managerOnly(logg)).Post("/gym-logo/{gymId}", controllers.UploadGymLogo(p.Uploads, logg))
	})
}

func mountStripe(r chi.Router, p Params) {
	logg := p.Logger
	r.Route("/stripe", func(r chi.Router) {
		r.Get("/products", controllers.ListStripeProducts(p.Subscriptions, logg))
		r.Post("/customers", controllers.CreateStripeCustomer(p.Subscriptions, logg))
		r.Post("/subscriptions", controllers.CreateStripeSubscription(p.Subscriptions, logg))
		r.Get("/subscriptions/me", controllers.GetMySubscription(p.Subscriptions, logg))
		r.Delete("/subscriptions/me", controllers.CancelMySubscription(p.Subscriptions, logg))
	})
}

func readinessChecks(p Params) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if p.DB != nil {
		checks["database"] = p.DB
	}
	if p.Redis != nil {
		checks["redis"] = p.Redis
	}
	return checks
}
