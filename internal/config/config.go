package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Member page sources.
const (
	MemberSourceUpstream = "upstream"
	MemberSourcePostgres = "postgres"
)

// Ticket stores.
const (
	TicketStoreMemory   = "memory"
	TicketStorePostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Portal   PortalConfig
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
	MigrationsDir  string
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
	Level  string
	Format string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	SignInPath            string
	LoginRatePerSecond    float64
	LoginBurst            int
	BootstrapAdminName    string
	BootstrapAdminEmail   string
	BootstrapAdminPass    string
}

// PortalConfig covers the ticket engine and scoped member views.
type PortalConfig struct {
	TicketStore            string
	MemberSource           string
	MemberAPIURL           string
	MemberAPITimeoutSecond int
	PageSize               int
	ScopeCacheTTLSeconds   int
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
			Name:                  getEnv("APP_NAME", "membership-portal"),
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
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			SignInPath:            getEnv("SIGN_IN_PATH", "/signin"),
			LoginRatePerSecond:    getEnvAsFloat("AUTH_LOGIN_RATE_PER_SECOND", 1),
			LoginBurst:            getEnvAsInt("AUTH_LOGIN_BURST", 5),
			BootstrapAdminName:    getEnv("AUTH_BOOTSTRAP_ADMIN_NAME", "Admin"),
			BootstrapAdminEmail:   os.Getenv("AUTH_BOOTSTRAP_ADMIN_EMAIL"),
			BootstrapAdminPass:    os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Portal: PortalConfig{
			TicketStore:            strings.ToLower(getEnv("TICKET_STORE", TicketStoreMemory)),
			MemberSource:           strings.ToLower(getEnv("MEMBER_SOURCE", MemberSourceUpstream)),
			MemberAPIURL:           os.Getenv("MEMBER_API_URL"),
			MemberAPITimeoutSecond: getEnvAsInt("MEMBER_API_TIMEOUT_SECONDS", 15),
			PageSize:               getEnvAsInt("MEMBER_PAGE_SIZE", 20),
			ScopeCacheTTLSeconds:   getEnvAsInt("SCOPE_CACHE_TTL_SECONDS", 300),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Portal.TicketStore {
	case TicketStoreMemory:
	case TicketStorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("TICKET_STORE=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid TICKET_STORE %q", c.Portal.TicketStore)
	}
	switch c.Portal.MemberSource {
	case MemberSourceUpstream:
		if c.Portal.MemberAPIURL == "" {
			return fmt.Errorf("MEMBER_SOURCE=upstream requires MEMBER_API_URL")
		}
	case MemberSourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("MEMBER_SOURCE=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid MEMBER_SOURCE %q", c.Portal.MemberSource)
	}
	if c.Portal.PageSize <= 0 {
		return fmt.Errorf("MEMBER_PAGE_SIZE must be positive")
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

// MemberAPITimeout bounds each upstream page request.
func (p PortalConfig) MemberAPITimeout() time.Duration {
	if p.MemberAPITimeoutSecond <= 0 {
		return 0
	}
	return time.Duration(p.MemberAPITimeoutSecond) * time.Second
}

// ScopeCacheTTL returns how long scope summaries stay cached.
func (p PortalConfig) ScopeCacheTTL() time.Duration {
	return time.Duration(p.ScopeCacheTTLSeconds) * time.Second
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
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
