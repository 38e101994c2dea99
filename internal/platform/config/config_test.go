package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("PORT", "")
	v.Set("STORAGE_DRIVER", "cassandra")
	v.Set("WEBHOOK_MAX_RETRIES", 0)
	v.Set("CORS_ALLOWED_ORIGINS", " https://app.example.org, ,https://admin.example.org ")

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 5, cfg.WebhookMaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.WebhookClaimTimeout)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, []string{"https://app.example.org", "https://admin.example.org"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("PORT", "9090")
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("JWT_SECRET", "s3cret")
	v.Set("WEBHOOK_MAX_RETRIES", 3)
	v.Set("WEBHOOK_CLAIM_TIMEOUT", "90s")
	v.Set("IS_PRODUCTION", true)

	cfg := fromViper(v)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 3, cfg.WebhookMaxRetries)
	assert.Equal(t, 90*time.Second, cfg.WebhookClaimTimeout)
	assert.True(t, cfg.IsProduction)
}
