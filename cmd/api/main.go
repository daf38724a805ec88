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

	httptransport "github.com/spec-kit/identity-service/internal/api/http"
	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/ratelimit"
	"github.com/spec-kit/identity-service/internal/repository"
	"github.com/spec-kit/identity-service/internal/service"
	"github.com/spec-kit/identity-service/internal/worker"
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var limiter ratelimit.LoginLimiter = ratelimit.Noop{}
	if redis.Enabled() {
		limiter = ratelimit.NewRedisLimiter(redis.Client, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginLockout(), logger)
	}

	tokenCfg := auth.TokenConfig{
		SigningKey: []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.JWTIssuer,
		Audience:   cfg.Auth.JWTAudience,
		TTL:        cfg.Auth.AccessTokenTTL(),
	}
	issuer, err := auth.NewTokenIssuer(tokenCfg)
	if err != nil {
		logger.Fatal("failed to build token issuer", zap.Error(err))
	}
	gate, err := auth.NewClaimsGate(tokenCfg)
	if err != nil {
		logger.Fatal("failed to build claims gate", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, cfg.Notification))

	stores := repository.NewStores(pg.PoolHandle())
	authService, err := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Accounts:      stores.Accounts,
		Roles:         stores.Roles,
		Confirmations: stores.Confirmations,
		Limiter:       limiter,
		Dispatcher:    dispatcher,
		Issuer:        issuer,
	}, logger)
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}
	if err := authService.SeedRoles(ctx); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var checks []handlers.DependencyCheck
	if pg.Enabled() {
		checks = append(checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping})
	}
	if redis.Enabled() {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:                handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, checks...),
		Auth:                  handlers.NewAuthHandler(authService),
		Secure:                handlers.NewSecureHandler(),
		Gate:                  auth.NewGateMiddleware(gate, logger, metrics),
		ProtectRoleAssignment: cfg.Auth.ProtectRoleAssignment,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
