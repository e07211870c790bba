package config

import (
	"fmt"
	"os"
	"strconv"
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
	Storage      StorageConfig
	Payment      PaymentConfig
	Worker       WorkerConfig
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

// AuthConfig defines authentication parameters.
//
// Token lifetimes are expressed as a count of ExpireUnit, so the defaults of
// 300 and 1200 keep their meaning whatever unit a deployment picks.
type AuthConfig struct {
	AccessTokenSecret    string
	RefreshTokenSecret   string
	ActivationSecret     string
	AccessTokenExpire    int
	RefreshTokenExpire   int
	ExpireUnit           time.Duration
	ActivationTTLMinutes int
	BcryptCost           int
	MinPasswordLength    int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// StorageConfig points at the S3-compatible bucket for avatars and event images.
type StorageConfig struct {
	Bucket         string
	Region         string
	BaseEndpoint   string
	AccessKey      string
	SecretKey      string
	UsePathStyle   bool
	PresignMinutes int
}

// PaymentConfig configures payment intent creation.
type PaymentConfig struct {
	Currency string
}

// WorkerConfig controls background jobs.
type WorkerConfig struct {
	SweepInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	expireUnit, err := time.ParseDuration(getEnv("AUTH_TOKEN_EXPIRE_UNIT", "1m"))
	if err != nil || expireUnit <= 0 {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_EXPIRE_UNIT: %v", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("WORKER_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_SWEEP_INTERVAL: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "event-ticketing-service"),
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
		Auth: AuthConfig{
			AccessTokenSecret:    getEnv("AUTH_ACCESS_TOKEN_SECRET", "dev-access-secret"),
			RefreshTokenSecret:   getEnv("AUTH_REFRESH_TOKEN_SECRET", "dev-refresh-secret"),
			ActivationSecret:     getEnv("AUTH_ACTIVATION_SECRET", "dev-activation-secret"),
			AccessTokenExpire:    getEnvAsInt("AUTH_ACCESS_TOKEN_EXPIRE", 300),
			RefreshTokenExpire:   getEnvAsInt("AUTH_REFRESH_TOKEN_EXPIRE", 1200),
			ExpireUnit:           expireUnit,
			ActivationTTLMinutes: getEnvAsInt("AUTH_ACTIVATION_TTL_MINUTES", 5),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 10),
			MinPasswordLength:    getEnvAsInt("AUTH_MIN_PASSWORD_LENGTH", 6),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Storage: StorageConfig{
			Bucket:         getEnv("S3_BUCKET", "event-ticketing"),
			Region:         getEnv("S3_REGION", "us-east-1"),
			BaseEndpoint:   os.Getenv("S3_BASE_ENDPOINT"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			UsePathStyle:   getEnvAsBool("S3_USE_PATH_STYLE", true),
			PresignMinutes: getEnvAsInt("S3_PRESIGN_MINUTES", 15),
		},
		Payment: PaymentConfig{
			Currency: getEnv("PAYMENT_CURRENCY", "USD"),
		},
		Worker: WorkerConfig{
			SweepInterval: sweepInterval,
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

// IsProduction reports whether secure-only cookies should be issued.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// AccessTTL is the access token lifetime.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenExpire) * a.ExpireUnit
}

// RefreshTTL is the refresh token lifetime, also used as the session TTL.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenExpire) * a.ExpireUnit
}

// ActivationTTL is how long activation and password reset tokens stay valid.
func (a AuthConfig) ActivationTTL() time.Duration {
	return time.Duration(a.ActivationTTLMinutes) * time.Minute
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
