package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("API_RATE_LIMIT", "not-a-number")

	cfg, err := Load(false)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 120, cfg.APIRateLimit)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.ShopCacheTTL)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load(false)
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DATABASE_URL", "")
	_, err = Load(true)
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")
	cfg, err := Load(false)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())

	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err = Load(false)
	assert.Error(t, err)
}
