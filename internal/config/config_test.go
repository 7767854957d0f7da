package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("BCRYPT_COST", "high")
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.RateLimitEnabled)
}

func TestLoad_AdminBootstrap(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "boss@shop.test")
	t.Setenv("ADMIN_PASSWORD", "s3cret!")
	t.Setenv("RESET_DB", "true")

	cfg := Load()

	assert.Equal(t, "boss@shop.test", cfg.AdminEmail)
	assert.Equal(t, "s3cret!", cfg.AdminPassword)
	assert.Equal(t, "Shop Admin", cfg.AdminName)
	assert.True(t, cfg.ResetDB)
}
