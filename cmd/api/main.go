package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/riverbend-alliance/portal-backend/api/routes"
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
	"github.com/riverbend-alliance/portal-backend/pkg/email"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
	"github.com/riverbend-alliance/portal-backend/pkg/metrics"
	"github.com/riverbend-alliance/portal-backend/pkg/migrate"
	"github.com/riverbend-alliance/portal-backend/pkg/redis"
	pkgstripe "github.com/riverbend-alliance/portal-backend/pkg/stripe"
)

const webhookGuardTTL = 7 * 24 * time.Hour

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

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	pol := policy.New(cfg.Portal.AdminAllowlist)

	var emailSender email.Sender
	if cfg.Sendgrid.APIKey != "" {
		client, emailErr := email.NewClient(cfg.Sendgrid, logg)
		if emailErr != nil {
			logg.Error(context.Background(), "failed to create email client", emailErr)
			os.Exit(1)
		}
		emailSender = client
	} else {
		emailSender = email.NewNoop(logg)
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	memberRepo := members.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		MemberRepo:     memberRepo,
		SessionManager: sessionManager,
		Policy:         pol,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	membersService, err := members.NewService(members.ServiceParams{
		Repo:     memberRepo,
		Policy:   pol,
		Notifier: notificationsService,
		Email:    emailSender,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create members service", err)
		os.Exit(1)
	}

	duesService, err := dues.NewService(dues.ServiceParams{
		Cycles:         dues.NewCycleRepository(dbClient.DB()),
		Records:        dues.NewRecordRepository(dbClient.DB()),
		Reconciliation: dues.NewReconciliationRepository(dbClient.DB()),
		Ledger:         finance.NewRepository(dbClient.DB()),
		Members:        memberRepo,
		Gateway:        dues.NewStripeGateway(stripeClient),
		TxRunner:       dbClient,
		Policy:         pol,
		Notifier:       notificationsService,
		Email:          emailSender,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dues service", err)
		os.Exit(1)
	}

	committeesService, err := committees.NewService(committees.ServiceParams{
		Repo:     committees.NewRepository(dbClient.DB()),
		TxRunner: dbClient,
		Policy:   pol,
		Notifier: notificationsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create committees service", err)
		os.Exit(1)
	}

	serviceHoursService, err := servicehours.NewService(servicehours.ServiceParams{
		Repo:     servicehours.NewRepository(dbClient.DB()),
		Policy:   pol,
		Notifier: notificationsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create service hours service", err)
		os.Exit(1)
	}

	postsService, err := posts.NewService(posts.ServiceParams{
		Repo:   posts.NewRepository(dbClient.DB()),
		Policy: pol,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create posts service", err)
		os.Exit(1)
	}

	financeService, err := finance.NewService(finance.ServiceParams{
		Repo:   finance.NewRepository(dbClient.DB()),
		Policy: pol,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create finance service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{Dues: duesService})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookGuardTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(routes.RouterParams{
		Config:               cfg,
		Logger:               logg,
		DB:                   dbClient,
		Redis:                redisClient,
		Policy:               pol,
		Metrics:              httpMetrics,
		Sessions:             sessionManager,
		MemberRepo:           memberRepo,
		AuthService:          authService,
		MembersService:       membersService,
		DuesService:          duesService,
		CommitteesService:    committeesService,
		ServiceHoursService:  serviceHoursService,
		PostsService:         postsService,
		NotificationsService: notificationsService,
		FinanceService:       financeService,
		StripeClient:         stripeClient,
		StripeWebhookSvc:     webhookService,
		StripeWebhookGuard:   webhookGuard,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	var closeErr error
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing dependencies", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down cleanly")
}
