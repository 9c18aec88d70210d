package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 365, cfg.Report.LookbackDays)
	assert.False(t, cfg.Report.RequireSession)
	assert.Equal(t, "propertyhub_session", cfg.Cookie.Name)
	assert.Equal(t, 12*time.Hour, cfg.JWT.SessionExpiry)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REPORT_LOOKBACK_DAYS", "90")
	t.Setenv("REPORT_REQUIRE_SESSION", "true")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("SESSION_EXPIRY", "30m")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Report.LookbackDays)
	assert.True(t, cfg.Report.RequireSession)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, 30*time.Minute, cfg.JWT.SessionExpiry)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SESSION_COOKIE_SECURE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.Cookie.Secure)
}

func TestLoad_RejectsNonPositiveLookback(t *testing.T) {
	t.Setenv("REPORT_LOOKBACK_DAYS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_EmailRequiresAPIKey(t *testing.T) {
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("RESEND_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())
}
