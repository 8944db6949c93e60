package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/fieldops/internal/api/http"
	"github.com/spec-kit/fieldops/internal/api/http/handlers"
	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/config"
	"github.com/spec-kit/fieldops/internal/events"
	"github.com/spec-kit/fieldops/internal/observability"
	"github.com/spec-kit/fieldops/internal/persistence"
	"github.com/spec-kit/fieldops/internal/repository"
	"github.com/spec-kit/fieldops/internal/service"
	"github.com/spec-kit/fieldops/internal/settings"
	"github.com/spec-kit/fieldops/internal/worker"
)

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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	identityRepo := repository.NewIdentityRepository(pool)
	leadRepo := repository.NewLeadRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	revokedRepo := repository.NewRevokedTokenRepository(redis.Client)

	registry := settings.NewRegistry(func(owner string) settings.Storage {
		return settings.NewRedisStorage(redis.Client, cfg.Settings.RedisKeyPrefix+owner+":")
	}, logger.Named("settings"))

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, registry, logger.Named("notifications"), cfg.Notification)
	notificationWorker := worker.StartNotificationWorker(notificationService, registry, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		IdentityRepo:     identityRepo,
		RevokedTokenRepo: revokedRepo,
		Logger:           logger,
	})
	if err := authService.BootstrapSuperAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPass); err != nil {
		logger.Fatal("failed to bootstrap super admin", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), identityRepo, revokedRepo)

	identityService := service.NewIdentityService(*cfg, identityRepo, dispatcher, logger)
	leadService := service.NewLeadService(leadRepo, customerRepo, dispatcher, logger)
	workService := service.NewWorkService(leadRepo, customerRepo, identityRepo)
	settingsService := service.NewSettingsService(registry)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Navigation:     handlers.NewNavigationHandler(),
		Identities:     handlers.NewIdentitiesHandler(identityService),
		Leads:          handlers.NewLeadsHandler(leadService),
		Customers:      handlers.NewCustomersHandler(workService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	notificationWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
