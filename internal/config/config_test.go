package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payments")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 3001, cfg.HTTP.Port)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, 2, cfg.API.BestClientsLimit)
	assert.True(t, cfg.API.EmptyListAsNotFound)
	assert.False(t, cfg.API.ContractorCanViewContracts)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.AdminAuthEnabled())
	assert.Equal(t, 20.0, cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadHonorsZeroRateLimit(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payments")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Zero(t, cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payments")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("EMPTY_LIST_AS_NOT_FOUND", "false")
	t.Setenv("JWT_ACCESS_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("IDEMPOTENCY_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.API.EmptyListAsNotFound)
	assert.True(t, cfg.AdminAuthEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, 90*time.Minute, cfg.Redis.IdempotencyTTL)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoadRejectsBadLifetime(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payments")
	t.Setenv("DB_CONN_MAX_LIFETIME", "forever")

	_, err := Load()
	require.Error(t, err)
}
