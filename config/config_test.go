package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHECKOUT_TIMEOUT", "")
	t.Setenv("PAYSTACK_CURRENCY", "")
	t.Setenv("BRAND_NAME", "")
	t.Setenv("SMTP_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.Server.CheckoutTimeout)
	assert.Equal(t, "NGN", cfg.Paystack.Currency)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
	assert.Equal(t, "Virginia Cakes", cfg.Email.BrandName)
	assert.Equal(t, 5*time.Second, cfg.Email.SMTPTimeout)
	assert.Equal(t, "0 8 * * *", cfg.Scheduler.StaleCron)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.StaleAfter)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CHECKOUT_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "https://virginiacakes.com, https://admin.virginiacakes.com ,")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ADMIN_EMAIL", "owner@virginiacakes.com")
	t.Setenv("SMTP_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Server.CheckoutTimeout)
	assert.Equal(t, []string{"https://virginiacakes.com", "https://admin.virginiacakes.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, "owner@virginiacakes.com", cfg.Email.AdminAddress)
	assert.Equal(t, 3*time.Second, cfg.Email.SMTPTimeout)
}

func TestLoad_AdminAddressFallsBackToEmail(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("EMAIL", "kitchen@virginiacakes.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "kitchen@virginiacakes.com", cfg.Email.AdminAddress)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseDuration("bogus", 3*time.Second))
	assert.Equal(t, 7, parseInt("x", 7))
	assert.Equal(t, 42, parseInt("42", 7))
	assert.False(t, parseBool("maybe"))
	assert.Empty(t, parseSlice(""))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "cakes", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cakes sslmode=disable", c.DSN())
}
