package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	StorageDriver  string
	MigrationsPath string
	JWTSecret      string

	// Payment gateway webhooks
	WebhookSigningSecret string
	WebhookRateLimit     string // ulule/limiter formatted rate, e.g. "100-M"
	WebhookMaxRetries    int
	WebhookClaimTimeout  time.Duration // how long a received event may stay unfinished

	CORSAllowedOrigins []string
	PosthogAPIKey      string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("WEBHOOK_SIGNING_SECRET", "")
	v.SetDefault("WEBHOOK_RATE_LIMIT", "300-M")
	v.SetDefault("WEBHOOK_MAX_RETRIES", 5)
	v.SetDefault("WEBHOOK_CLAIM_TIMEOUT", "5m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("POSTHOG_API_KEY", "")

	// Environment variables override the defaults and anything loaded from .env.
	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		DatabaseURL:          v.GetString("PGSQL_URL"),
		Port:                 v.GetString("PORT"),
		IsProduction:         v.GetBool("IS_PRODUCTION"),
		StorageDriver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MigrationsPath:       v.GetString("MIGRATIONS_PATH"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		WebhookSigningSecret: v.GetString("WEBHOOK_SIGNING_SECRET"),
		WebhookRateLimit:     v.GetString("WEBHOOK_RATE_LIMIT"),
		WebhookMaxRetries:    v.GetInt("WEBHOOK_MAX_RETRIES"),
		WebhookClaimTimeout:  v.GetDuration("WEBHOOK_CLAIM_TIMEOUT"),
		PosthogAPIKey:        v.GetString("POSTHOG_API_KEY"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		log.Printf("Warning: Invalid value for STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}

	if cfg.StorageDriver == StorageDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.WebhookSigningSecret == "" {
		log.Println("Warning: WEBHOOK_SIGNING_SECRET not set. Webhook signatures will not be verified.")
	}

	if cfg.WebhookMaxRetries <= 0 {
		log.Printf("Warning: Invalid value for WEBHOOK_MAX_RETRIES (%d). Defaulting to 5.\n", cfg.WebhookMaxRetries)
		cfg.WebhookMaxRetries = 5
	}

	if cfg.WebhookClaimTimeout <= 0 {
		log.Printf("Warning: Invalid value for WEBHOOK_CLAIM_TIMEOUT (%s). Defaulting to 5m.\n", cfg.WebhookClaimTimeout)
		cfg.WebhookClaimTimeout = 5 * time.Minute
	}

	return cfg
}
