package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":        "postgres://localhost:5432/mandi?sslmode=disable",
		"REDIS_URL":           "redis://localhost:6379/0",
		"ADMIN_TOKEN":         "secret-token",
		"PORT":                "",
		"DEFAULT_GST_PERCENT": "",
		"DELIVERY_CHARGE":     "",
		"FREE_DELIVERY_ABOVE": "",
		"COD_CHARGE":          "",
		"ADVANCE_PERCENT":     "",
		"CART_LOCK_TTL":       "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.True(t, cfg.DefaultGSTPercent.Equal(decimal.NewFromInt(5)))
	require.True(t, cfg.DeliveryCharge.Equal(decimal.NewFromInt(50)))
	require.True(t, cfg.FreeDeliveryAbove.Equal(decimal.NewFromInt(2000)))
	require.True(t, cfg.AdvancePercent.Equal(decimal.NewFromInt(30)))
	require.Equal(t, "mandi", cfg.MetricsNamespace)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["ADVANCE_PERCENT"] = "50"
	env["CART_LOCK_TTL"] = "10s"
	env["CORS_ALLOWED_ORIGINS"] = "https://shop.example.com, https://admin.example.com"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.True(t, cfg.AdvancePercent.Equal(decimal.NewFromInt(50)))
	require.Equal(t, "10s", cfg.CartLockTTL.String())
	require.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""
	_, err := LoadForTests(env)
	require.Error(t, err)
}

func TestLoadRejectsAdvancePercentOutOfRange(t *testing.T) {
	env := baseEnv()
	env["ADVANCE_PERCENT"] = "120"
	_, err := LoadForTests(env)
	require.Error(t, err)
}
