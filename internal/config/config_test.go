package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret-32-bytes-minimum")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "identity-service", cfg.Auth.JWTIssuer)
	assert.Equal(t, "identity-service-clients", cfg.Auth.JWTAudience)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.EmailConfirmationTTL())
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginLockout())
	assert.True(t, cfg.Auth.AutoConfirmEmail)
	assert.False(t, cfg.Auth.RequireConfirmedEmail)
	assert.True(t, cfg.Auth.ProtectRoleAssignment)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6, cfg.Auth.PasswordMinLength)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret-32-bytes-minimum")
	t.Setenv("AUTH_JWT_ISSUER", "app")
	t.Setenv("AUTH_JWT_AUDIENCE", "app-clients")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("AUTH_AUTO_CONFIRM_EMAIL", "false")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "app", cfg.Auth.JWTIssuer)
	assert.Equal(t, "app-clients", cfg.Auth.JWTAudience)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.False(t, cfg.Auth.AutoConfirmEmail)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET is required")
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret-32-bytes-minimum")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid REDIS_DB")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{AccessTokenTTLMinutes: 0}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET is required")
	assert.Contains(t, err.Error(), "AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive")
	assert.Contains(t, err.Error(), "AUTH_JWT_ISSUER must not be empty")
	assert.Contains(t, err.Error(), "AUTH_JWT_AUDIENCE must not be empty")
}
