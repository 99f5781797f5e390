package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	LogLevel string

	HTTPAddr string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Upstream UpstreamConfig
	Email    EmailConfig
	Pipeline PipelineConfig
}

// UpstreamConfig carries credentials and endpoints for the logistics ERP API.
type UpstreamConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	// RefreshToken is the bootstrap credential used only when no rotated
	// token has been persisted yet.
	RefreshToken string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AlertTo      []string
}

// PipelineConfig exposes the sync pipeline tunables. The thresholds were
// hard-coded in earlier revisions; they are env-driven now but keep the same
// defaults.
type PipelineConfig struct {
	StuckAfterDays   int
	PageConcurrency  int
	StatusBatchSize  int
	SyncIntervalMins int
	InvoiceScanLimit int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "ordersync"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "ordersync"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		Upstream: UpstreamConfig{
			BaseURL:      strings.TrimRight(getenv("UPSTREAM_BASE_URL", ""), "/"),
			TokenURL:     getenv("UPSTREAM_TOKEN_URL", ""),
			ClientID:     strings.TrimSpace(getenv("UPSTREAM_CLIENT_ID", "")),
			ClientSecret: strings.TrimSpace(getenv("UPSTREAM_CLIENT_SECRET", "")),
			Scope:        getenv("UPSTREAM_SCOPE", "api offline_access"),
			RefreshToken: strings.TrimSpace(getenv("UPSTREAM_REFRESH_TOKEN", "")),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", ""),
			AlertTo:      splitList(getenv("ALERT_RECIPIENTS", "")),
		},
		Pipeline: PipelineConfig{
			StuckAfterDays:   getenvInt("PIPELINE_STUCK_AFTER_DAYS", 3),
			PageConcurrency:  getenvInt("PIPELINE_PAGE_CONCURRENCY", 10),
			StatusBatchSize:  getenvInt("PIPELINE_STATUS_BATCH_SIZE", 10),
			SyncIntervalMins: getenvInt("PIPELINE_SYNC_INTERVAL_MINS", 30),
			InvoiceScanLimit: getenvInt("PIPELINE_INVOICE_SCAN_LIMIT", 1000),
		},
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
