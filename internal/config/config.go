package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. Disabling Redis turns off login throttling.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	JWTIssuer             string
	JWTAudience           string
	AccessTokenTTLMinutes int
	BcryptCost            int

	PasswordMinLength              int
	PasswordRequireDigit           bool
	PasswordRequireLowercase       bool
	PasswordRequireUppercase       bool
	PasswordRequireNonAlphanumeric bool

	AutoConfirmEmail            bool
	RequireConfirmedEmail       bool
	EmailConfirmationTTLMinutes int
	ProtectRoleAssignment       bool
	LoginMaxFailures            int
	LoginLockoutMinutes         int
}

// NotificationConfig holds the mail stub settings.
type NotificationConfig struct {
	EmailFrom     string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "identity-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			JWTIssuer:             getEnv("AUTH_JWT_ISSUER", "identity-service"),
			JWTAudience:           getEnv("AUTH_JWT_AUDIENCE", "identity-service-clients"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),

			PasswordMinLength:              getEnvAsInt("AUTH_PASSWORD_MIN_LENGTH", 6),
			PasswordRequireDigit:           getEnvAsBool("AUTH_PASSWORD_REQUIRE_DIGIT", true),
			PasswordRequireLowercase:       getEnvAsBool("AUTH_PASSWORD_REQUIRE_LOWER", true),
			PasswordRequireUppercase:       getEnvAsBool("AUTH_PASSWORD_REQUIRE_UPPER", true),
			PasswordRequireNonAlphanumeric: getEnvAsBool("AUTH_PASSWORD_REQUIRE_NON_ALNUM", true),

			AutoConfirmEmail:            getEnvAsBool("AUTH_AUTO_CONFIRM_EMAIL", true),
			RequireConfirmedEmail:       getEnvAsBool("AUTH_REQUIRE_CONFIRMED_EMAIL", false),
			EmailConfirmationTTLMinutes: getEnvAsInt("AUTH_EMAIL_CONFIRMATION_TTL_MINUTES", 24*60),
			ProtectRoleAssignment:       getEnvAsBool("AUTH_PROTECT_ROLE_ASSIGNMENT", true),
			LoginMaxFailures:            getEnvAsInt("AUTH_LOGIN_MAX_FAILURES", 5),
			LoginLockoutMinutes:         getEnvAsInt("AUTH_LOGIN_LOCKOUT_MINUTES", 15),
		},
		Notification: NotificationConfig{
			EmailFrom:     getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			PublicBaseURL: getEnv("NOTIFY_PUBLIC_BASE_URL", "http://localhost:8080"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive, got %d", c.Auth.AccessTokenTTLMinutes))
	}
	if strings.TrimSpace(c.Auth.JWTIssuer) == "" {
		errs = append(errs, errors.New("AUTH_JWT_ISSUER must not be empty"))
	}
	if strings.TrimSpace(c.Auth.JWTAudience) == "" {
		errs = append(errs, errors.New("AUTH_JWT_AUDIENCE must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// EmailConfirmationTTL returns how long a confirmation token stays usable.
func (a AuthConfig) EmailConfirmationTTL() time.Duration {
	return time.Duration(a.EmailConfirmationTTLMinutes) * time.Minute
}

// LoginLockout returns the failure window and lockout duration.
func (a AuthConfig) LoginLockout() time.Duration {
	return time.Duration(a.LoginLockoutMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
