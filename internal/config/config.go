package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/eedition-gateway/internal/domain"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Session  SessionConfig
	Reader   ReaderConfig
	Policy   PolicyConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig defines parameters for the host-identity session handoff.
type SessionConfig struct {
	JWTSecret  string
	TTLHours   int
	CookieName string
	HookSecret string
}

// ReaderConfig holds the external reader-service integration settings.
type ReaderConfig struct {
	// BaseURL is the external e-edition reader URL the token is appended to.
	BaseURL string
	// EndpointPath is the browser-facing route that triggers the redirect
	// decision, e.g. "/e-edition".
	EndpointPath string
	// FallbackURL is where authenticated-but-not-entitled readers land.
	// Empty means the site root.
	FallbackURL string
	// LoginURL is the host identity login page for anonymous visitors.
	LoginURL string
	// SiteRootURL is the safety destination when no better one exists.
	SiteRootURL string
	// TokenTTLDays is the access-token expiration window.
	TokenTTLDays int
}

// PolicyConfig holds the entitlement policy and capability toggles.
type PolicyConfig struct {
	AllowAllRegistered       bool
	AllowedRoles             []string
	AllowedSubscriptionPlans []string
	AllowedMembershipPlans   []string
	SubscriptionsEnabled     bool
	MembershipsEnabled       bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "eedition-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			JWTSecret:  getEnv("SESSION_JWT_SECRET", "dev-secret"),
			TTLHours:   getEnvAsInt("SESSION_TTL_HOURS", 24),
			CookieName: getEnv("SESSION_COOKIE_NAME", "eedition_session"),
			HookSecret: os.Getenv("LOGIN_HOOK_SECRET"),
		},
		Reader: ReaderConfig{
			BaseURL:      os.Getenv("READER_BASE_URL"),
			EndpointPath: getEnv("E_EDITION_ENDPOINT", "/e-edition"),
			FallbackURL:  os.Getenv("FALLBACK_PAGE_URL"),
			LoginURL:     getEnv("LOGIN_URL", "/login"),
			SiteRootURL:  getEnv("SITE_ROOT_URL", "/"),
			TokenTTLDays: getEnvAsInt("ACCESS_TOKEN_TTL_DAYS", 365),
		},
		Policy: PolicyConfig{
			AllowAllRegistered:       getEnvAsBool("POLICY_ALLOW_ALL_REGISTERED", false),
			AllowedRoles:             getEnvAsList("POLICY_ALLOWED_ROLES"),
			AllowedSubscriptionPlans: getEnvAsList("POLICY_ALLOWED_SUBSCRIPTION_PLANS"),
			AllowedMembershipPlans:   getEnvAsList("POLICY_ALLOWED_MEMBERSHIP_PLANS"),
			SubscriptionsEnabled:     getEnvAsBool("SUBSCRIPTIONS_ENABLED", false),
			MembershipsEnabled:       getEnvAsBool("MEMBERSHIPS_ENABLED", false),
		},
	}

	return cfg, nil
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

// TokenTTL returns the access-token expiration window.
func (r ReaderConfig) TokenTTL() time.Duration {
	if r.TokenTTLDays <= 0 {
		return 365 * 24 * time.Hour
	}
	return time.Duration(r.TokenTTLDays) * 24 * time.Hour
}

// Snapshot returns the entitlement policy as an immutable per-evaluation copy.
func (p PolicyConfig) Snapshot() domain.EntitlementPolicy {
	return domain.EntitlementPolicy{
		AllowAllRegistered:       p.AllowAllRegistered,
		AllowedRoles:             append([]string(nil), p.AllowedRoles...),
		AllowedSubscriptionPlans: append([]string(nil), p.AllowedSubscriptionPlans...),
		AllowedMembershipPlans:   append([]string(nil), p.AllowedMembershipPlans...),
	}
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

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
