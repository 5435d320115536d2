package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riverbend-alliance/portal-backend/api/controllers"
	webhookcontrollers "github.com/riverbend-alliance/portal-backend/api/controllers/webhooks"
	"github.com/riverbend-alliance/portal-backend/api/middleware"
	"github.com/riverbend-alliance/portal-backend/internal/auth"
	"github.com/riverbend-alliance/portal-backend/internal/committees"
	"github.com/riverbend-alliance/portal-backend/internal/dues"
	"github.com/riverbend-alliance/portal-backend/internal/finance"
	"github.com/riverbend-alliance/portal-backend/internal/members"
	"github.com/riverbend-alliance/portal-backend/internal/notifications"
	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/internal/posts"
	"github.com/riverbend-alliance/portal-backend/internal/servicehours"
	stripewebhook "github.com/riverbend-alliance/portal-backend/internal/webhooks/stripe"
	"github.com/riverbend-alliance/portal-backend/pkg/auth/session"
	"github.com/riverbend-alliance/portal-backend/pkg/config"
	"github.com/riverbend-alliance/portal-backend/pkg/db"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
	"github.com/riverbend-alliance/portal-backend/pkg/metrics"
	"github.com/riverbend-alliance/portal-backend/pkg/redis"
	pkgstripe "github.com/riverbend-alliance/portal-backend/pkg/stripe"
)

// RouterParams collects everything the HTTP surface needs.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Policy  *policy.Policy
	Metrics *metrics.HTTPMetrics

	Sessions   session.AccessSessionChecker
	MemberRepo members.Repository

	AuthService          auth.Service
	MembersService       members.Service
	DuesService          dues.Service
	CommitteesService    committees.Service
	ServiceHoursService  servicehours.Service
	PostsService         posts.Service
	NotificationsService notifications.Service
	FinanceService       finance.Service

	StripeClient       *pkgstripe.Client
	StripeWebhookSvc   *stripewebhook.Service
	StripeWebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(p.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhookSvc, p.StripeClient, p.StripeWebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, cfg, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, cfg, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, p.MemberRepo, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/members", func(r chi.Router) {
			r.Get("/me", controllers.MembersMe(p.MembersService, logg))
			r.Put("/me/profile", controllers.MembersUpdateProfile(p.MembersService, logg))
		})

		r.Route("/dues", func(r chi.Router) {
			r.Get("/cycles", controllers.DuesListCycles(p.DuesService, logg))
			r.Get("/mine", controllers.DuesMyRecords(p.DuesService, logg))
			r.Post("/initiate", controllers.DuesInitiate(p.DuesService, logg))
		})

		r.Route("/committees", func(r chi.Router) {
			r.Get("/", controllers.CommitteesList(p.CommitteesService, logg))
			r.Get("/{committeeId}/roster", controllers.CommitteesRoster(p.CommitteesService, logg))
			r.Post("/{committeeId}/join", controllers.CommitteesJoin(p.CommitteesService, logg))
			r.Post("/{committeeId}/leave", controllers.CommitteesLeave(p.CommitteesService, logg))
		})

		r.Route("/service-hours", func(r chi.Router) {
			r.Post("/", controllers.ServiceHoursSubmit(p.ServiceHoursService, logg))
			r.Get("/mine", controllers.ServiceHoursMine(p.ServiceHoursService, logg))
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", controllers.PostsList(p.PostsService, logg))
			r.Post("/", controllers.PostsCreate(p.PostsService, logg))
			r.Delete("/{postId}", controllers.PostsRemove(p.PostsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(p.NotificationsService, logg))
			r.Post("/{notificationId}/read", controllers.NotificationsMarkRead(p.NotificationsService, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(p.NotificationsService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(p.Policy, enums.MemberRoleBoard, logg))

				r.Route("/service-hours", func(r chi.Router) {
					r.Get("/pending", controllers.ServiceHoursPending(p.ServiceHoursService, logg))
					r.Post("/review", controllers.ServiceHoursReview(p.ServiceHoursService, logg))
				})
				r.Post("/committees", controllers.CommitteesCreate(p.CommitteesService, logg))
				r.Delete("/committees/{committeeId}/members/{memberId}", controllers.CommitteesRemoveMember(p.CommitteesService, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(p.Policy, enums.MemberRoleTreasurer, logg))

				r.Route("/members", func(r chi.Router) {
					r.Get("/", controllers.MembersList(p.MembersService, logg))
					r.Get("/{memberId}", controllers.MembersGet(p.MembersService, logg))
					r.Post("/{memberId}/approve", controllers.MembersApprove(p.MembersService, logg))
					r.Post("/{memberId}/deactivate", controllers.MembersDeactivate(p.MembersService, logg))
					r.With(middleware.RequireRole(p.Policy, enums.MemberRolePresident, logg)).
						Put("/{memberId}/role", controllers.MembersSetRole(p.MembersService, logg))
				})

				r.Route("/dues", func(r chi.Router) {
					r.Post("/cycles", controllers.DuesCreateCycle(p.DuesService, logg))
					r.Post("/cycles/{cycleId}/activate", controllers.DuesActivateCycle(p.DuesService, logg))
					r.Get("/cycles/{cycleId}/records", controllers.DuesListCycleRecords(p.DuesService, logg))
					r.Post("/offline", controllers.DuesMarkOffline(p.DuesService, logg))
					r.Post("/waive", controllers.DuesWaive(p.DuesService, logg))
					r.Get("/reconciliation", controllers.DuesListReconciliation(p.DuesService, logg))
					r.Post("/reconciliation/resolve", controllers.DuesResolveReconciliation(p.DuesService, logg))
				})

				r.Route("/finance", func(r chi.Router) {
					r.Get("/ledger", controllers.FinanceListLedger(p.FinanceService, logg))
					r.Post("/adjustments", controllers.FinanceRecordAdjustment(p.FinanceService, logg))
					r.Get("/cycles/{cycleId}/summary", controllers.FinanceCycleSummary(p.FinanceService, logg))
				})
			})
		})
	})

	return r
}
