package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"JWT_EXPIRY_HOURS", "RATE_LIMIT_WINDOW", "HARD_DELETE_SECRET", "CORS_ORIGINS", "DB_SSLMODE"} {
		t.Setenv(key, "")
	}

	cfg, _ := Load()

	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Empty(t, cfg.HardDeleteSecret)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("HARD_DELETE_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_SSLMODE", "require")

	cfg, _ := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, "s3cret", cfg.HardDeleteSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "soon")
	t.Setenv("RATE_LIMIT_REQUESTS", "-3")

	cfg, _ := Load()

	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 100, cfg.RateLimitRequests)
}
