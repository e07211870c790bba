package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/event-ticketing/internal/api/http"
	"github.com/spec-kit/event-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/payment"
	"github.com/spec-kit/event-ticketing/internal/persistence"
	"github.com/spec-kit/event-ticketing/internal/repository"
	"github.com/spec-kit/event-ticketing/internal/service"
	"github.com/spec-kit/event-ticketing/internal/session"
	"github.com/spec-kit/event-ticketing/internal/storage"
	"github.com/spec-kit/event-ticketing/internal/worker"
)

const sessionKeyPrefix = "session:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	sessionCache := persistence.NewSessionCache(ctx, cfg.Redis, logger)
	defer sessionCache.Close()

	tokens := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:     cfg.Auth.AccessTokenSecret,
		RefreshSecret:    cfg.Auth.RefreshTokenSecret,
		ActivationSecret: cfg.Auth.ActivationSecret,
		AccessTTL:        cfg.Auth.AccessTTL(),
		RefreshTTL:       cfg.Auth.RefreshTTL(),
		ActivationTTL:    cfg.Auth.ActivationTTL(),
	})
	sessions := auth.NewSessionManager(tokens, session.NewRedisStore(sessionCache.Client(), sessionKeyPrefix), logger)
	cookies := auth.NewCookieWriter(cfg.App.IsProduction(), cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())

	var uploads storage.Presigner
	if store, err := storage.NewImageStore(ctx, cfg.Storage); err != nil {
		logger.Warn("image uploads disabled", zap.Error(err))
	} else {
		uploads = store
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	accountRepo := repository.NewAccountRepository(pool)
	organizerRepo := repository.NewOrganizerRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		AccountRepo:       accountRepo,
		PasswordResetRepo: repository.NewPasswordResetRepository(pool),
		Sessions:          sessions,
		Uploads:           uploads,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	ledgerService := service.NewLedgerService(service.LedgerDependencies{
		UnitOfWork:  repository.NewUnitOfWork(pool),
		AccountRepo: accountRepo,
		Sessions:    sessions,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	reportService := service.NewReportService(organizerRepo)
	eventService := service.NewEventService(eventRepo, uploads, logger)
	paymentService := service.NewPaymentService(payment.NewLocalProcessor(),
		repository.NewPaymentIntentRepository(pool), cfg.Payment.Currency, logger)

	wait := worker.Start(ctx, worker.Set{
		Notifications: service.NewNotificationService(dispatcher, logger, cfg.Notification),
		Sweep:         worker.NewSweepWorker(eventService, cfg.Worker.SweepInterval, logger),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			handlers.DependencyCheck{Name: "postgres", Pinger: pg},
			handlers.DependencyCheck{Name: "redis", Pinger: sessionCache},
		),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Accounts:       handlers.NewAccountsHandler(authService, cookies),
		Ledger:         handlers.NewLedgerHandler(ledgerService, reportService),
		Events:         handlers.NewEventsHandler(eventService),
		Payments:       handlers.NewPaymentsHandler(paymentService),
		AuthMiddleware: auth.NewAuthMiddleware(sessions),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
