// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Central configuration for the EventPro core. Values are read from the
// environment (optionally seeded from a .env file) and fall back to defaults
// suitable for local development. Missing variables are not an error; invalid
// ones are reported by Validate.
// -----------------------------------------------------------------------------

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config groups related settings:
//   - App: application identity and environment
//   - Logger: log level
//   - DB: storage collaborator connection (MySQL)
//   - Redis: analytics counter store
//   - Analytics: which sink records lifecycle events
//   - Notification: channel delays, timeouts and rate limits
//   - Certificates: issuance parallelism and verification settings
type Config struct {
	App struct {
		Name string
		Env  string
	}

	Logger struct {
		Level string
	}

	DB struct {
		DSN             string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
		Prefix   string
	}

	Analytics struct {
		Driver string // memory, sql, redis
	}

	Notification struct {
		FromAddress   string
		FromName      string
		EmailDelay    time.Duration
		SMSDelay      time.Duration
		PushDelay     time.Duration
		SendTimeout   time.Duration
		RatePerSecond float64
		Burst         int
	}

	Certificates struct {
		Concurrency   int
		SigningSecret string
		Issuer        string
		VerifyBaseURL string
		QRCodes       bool
	}
}

const defaultSigningSecret = "change-me-certificate-signing-secret"

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.Name = getEnv("APP_NAME", "eventpro")
	cfg.App.Env = getEnv("APP_ENV", "development")

	cfg.Logger.Level = getEnv("LOG_LEVEL", "info")

	cfg.DB.DSN = getEnv("DB_DSN", "root:password@tcp(127.0.0.1:3306)/eventpro?parseTime=true")
	cfg.DB.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DB.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DB.ConnMaxLifetime = time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second

	cfg.Redis.Host = getEnv("REDIS_HOST", "127.0.0.1")
	cfg.Redis.Port = getEnvAsInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	cfg.Redis.Prefix = getEnv("REDIS_PREFIX", "eventpro:")

	cfg.Analytics.Driver = strings.ToLower(getEnv("ANALYTICS_DRIVER", "memory"))

	cfg.Notification.FromAddress = getEnv("NOTIFY_FROM_ADDRESS", "noreply@eventpro.local")
	cfg.Notification.FromName = getEnv("NOTIFY_FROM_NAME", "EventPro")
	cfg.Notification.EmailDelay = getEnvAsMillis("NOTIFY_EMAIL_DELAY_MS", 1000)
	cfg.Notification.SMSDelay = getEnvAsMillis("NOTIFY_SMS_DELAY_MS", 800)
	cfg.Notification.PushDelay = getEnvAsMillis("NOTIFY_PUSH_DELAY_MS", 500)
	cfg.Notification.SendTimeout = getEnvAsMillis("NOTIFY_SEND_TIMEOUT_MS", 5000)
	cfg.Notification.RatePerSecond = getEnvAsFloat("NOTIFY_RATE_PER_SECOND", 50)
	cfg.Notification.Burst = getEnvAsInt("NOTIFY_RATE_BURST", 10)

	cfg.Certificates.Concurrency = getEnvAsInt("CERT_CONCURRENCY", 1)
	cfg.Certificates.SigningSecret = getEnv("CERT_SIGNING_SECRET", defaultSigningSecret)
	cfg.Certificates.Issuer = getEnv("CERT_ISSUER", "eventpro")
	cfg.Certificates.VerifyBaseURL = getEnv("CERT_VERIFY_BASE_URL", "https://eventpro.local/certificates/verify")
	cfg.Certificates.QRCodes = getEnvAsBool("CERT_QR_CODES", true)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and, in production, that secrets were changed.
func (c *Config) Validate() error {
	switch c.Analytics.Driver {
	case "memory", "sql", "redis":
	default:
		return fmt.Errorf("invalid ANALYTICS_DRIVER: %q (memory, sql or redis)", c.Analytics.Driver)
	}

	if c.Notification.SendTimeout <= 0 {
		return fmt.Errorf("NOTIFY_SEND_TIMEOUT_MS must be positive")
	}
	if c.Notification.RatePerSecond <= 0 || c.Notification.Burst <= 0 {
		return fmt.Errorf("notification rate and burst must be positive")
	}
	if c.Certificates.Concurrency < 1 {
		return fmt.Errorf("CERT_CONCURRENCY must be at least 1, got %d", c.Certificates.Concurrency)
	}

	if c.IsProduction() {
		if c.Certificates.SigningSecret == defaultSigningSecret {
			return fmt.Errorf("CERT_SIGNING_SECRET must be changed in production")
		}
		if len(c.Certificates.SigningSecret) < 32 {
			return fmt.Errorf("CERT_SIGNING_SECRET must be at least 32 characters in production")
		}
	}

	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}
