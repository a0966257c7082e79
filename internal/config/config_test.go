package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	for k := range defaults {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "data/appointments.json", cfg.DataFile)
	assert.Equal(t, 30, cfg.BookingRatePerMinute)
	assert.Equal(t, "0 18 * * *", cfg.ReminderCron)
	assert.Equal(t, time.Hour, cfg.JWTTTL())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("TRUSTED_PROXY_HOPS", "1")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/turnero")
	t.Setenv("BOOKING_RATE_PER_MINUTE", "5")
	t.Setenv("CANCELLED_RETENTION_DAYS", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 1, cfg.TrustedProxyHops)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 5, cfg.BookingRatePerMinute)
	assert.Equal(t, 7*24*time.Hour, cfg.CancelledRetention())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"STORE_DRIVER": "postgres", "DATABASE_URL": ""},
		"unknown driver":       {"STORE_DRIVER": "redis"},
		"bad timezone":         {"TIMEZONE": "Mars/Olympus"},
		"negative retention":   {"CANCELLED_RETENTION_DAYS": "-1"},
		"negative proxy hops":  {"TRUSTED_PROXY_HOPS": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
