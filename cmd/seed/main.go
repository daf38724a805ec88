// Command seed creates the first administrator so role assignment can be used
// while it is restricted to Admin callers.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/repository"
	"github.com/spec-kit/identity-service/internal/service"
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

	username := os.Getenv("SEED_ADMIN_USERNAME")
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if username == "" || password == "" {
		logger.Fatal("SEED_ADMIN_USERNAME and SEED_ADMIN_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if !pg.Enabled() {
		logger.Fatal("POSTGRES_DSN is required to seed an administrator")
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		SigningKey: []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.JWTIssuer,
		Audience:   cfg.Auth.JWTAudience,
		TTL:        cfg.Auth.AccessTokenTTL(),
	})
	if err != nil {
		logger.Fatal("failed to build token issuer", zap.Error(err))
	}

	// Seeded administrators skip the confirmation mail.
	authCfg := cfg.Auth
	authCfg.AutoConfirmEmail = true

	stores := repository.NewStores(pg.PoolHandle())
	authService, err := service.NewAuthService(authCfg, service.AuthDependencies{
		Accounts:      stores.Accounts,
		Roles:         stores.Roles,
		Confirmations: stores.Confirmations,
		Issuer:        issuer,
	}, logger)
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}
	if err := authService.SeedRoles(ctx); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}

	if _, err := authService.Register(ctx, username, email, password); err != nil {
		if !errors.Is(err, service.ErrAccountExists) {
			logger.Fatal("failed to register administrator", zap.Error(err))
		}
		logger.Info("administrator already exists", zap.String("username", username))
	}
	if err := authService.AssignRole(ctx, username, domain.RoleAdmin); err != nil {
		logger.Fatal("failed to assign admin role", zap.Error(err))
	}
	logger.Info("administrator seeded", zap.String("username", username))
}
