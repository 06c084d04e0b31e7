package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Built once at process start from environment variables and injected into
// the services; nothing reads the environment after that.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Database
	DatabaseURL    string // empty = local sqlite fallback (db.sqlite3)
	DatabaseSchema string // Postgres search_path, optional

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Loyalty program
	DefaultGoal int    // goal threshold when no store can be resolved
	GiftName    string // default gift for redemptions
	ShopURL     string // linked at the end of WhatsApp messages

	// SMTP (email dispatch is skipped when host/user/pass are unset)
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPTLS       bool
	SMTPSSL       bool
	SMTPFromName  string
	SMTPFromEmail string
	TestEmailTo   string // fallback recipient for clients without email

	// Card rendering
	CardFontPath string

	// Notification dispatch
	NotifyConcurrency int
	NotifyTimeout     time.Duration

	// Cache
	StoreCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// CORS
	CORSOrigins []string
}

// Load reads configuration from environment variables with defaults.
// A .env file is honored for local development; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	fromEmail := getEnv("SMTP_FROM_EMAIL", "")
	if fromEmail == "" {
		fromEmail = getEnv("SMTP_USER", "no-reply@example.com")
	}

	return &Config{
		Port:     getEnvInt("PORT", 5000),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseSchema: getEnv("DATABASE_SCHEMA", ""),

		JWTSecret:    getEnv("JWT_SECRET_KEY", "change"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 8*time.Hour),

		DefaultGoal: getEnvInt("DEFAULT_META", 10),
		GiftName:    getEnv("GIFT_NAME", "1 Kg de Vela Palito"),
		ShopURL:     getEnv("SHOP_URL", "https://www.casadocigano.com.br/"),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		SMTPTLS:       getEnvBool("SMTP_TLS", true),
		SMTPSSL:       getEnvBool("SMTP_SSL", false),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "Casa do Cigano"),
		SMTPFromEmail: fromEmail,
		TestEmailTo:   getEnv("TEST_EMAIL_TO", ""),

		CardFontPath: getEnv("CARD_FONT_PATH", ""),

		NotifyConcurrency: getEnvInt("NOTIFY_CONCURRENCY", 8),
		NotifyTimeout:     getEnvDuration("NOTIFY_TIMEOUT", 15*time.Second),

		StoreCacheTTL: getEnvDuration("STORE_CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{
			"https://fidelidade-chat.vercel.app",
			"https://fidelidade-chat-*.vercel.app",
			"http://localhost:5173",
		}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true")
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
