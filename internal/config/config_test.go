package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9090")

	cfg := Load()

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "SOL", cfg.OrderNumberPrefix)
	assert.Equal(t, "EGP", cfg.Currency)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpires)
	assert.Equal(t, 5*time.Second, cfg.NotificationTimeout)
	assert.True(t, cfg.DefaultShippingCost.Equal(decimal.NewFromInt(50)))
	assert.True(t, cfg.TaxRate.IsZero())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "500")
	t.Setenv("TAX_RATE", "0.14")
	t.Setenv("DEFAULT_SHIPPING_COST", "not-a-number")
	t.Setenv("NOTIFICATION_TIMEOUT_SECONDS", "2")

	cfg := Load()

	assert.True(t, cfg.FreeShippingThreshold.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "0.14", cfg.TaxRate.String())
	assert.True(t, cfg.DefaultShippingCost.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 2*time.Second, cfg.NotificationTimeout)
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Africa/Cairo"}
	loc := cfg.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Africa/Cairo", loc.String())

	cfg.Timezone = "Nowhere/Atlantis"
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Timezone = ""
	assert.Equal(t, time.Local, cfg.Location())
}
