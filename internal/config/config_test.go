package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(keys ...string) {
	for _, k := range keys {
		_ = os.Unsetenv("STREAKEDIN_" + k)
	}
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetEnv("DB_DRIVER", "AI_PROVIDER", "STATS_DEBOUNCE", "BREAKER_FAILURE_THRESHOLD", "ENVIRONMENT", "JWT_SECRET")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, AIProviderGemini, cfg.AIProvider)
	assert.Equal(t, 250*time.Millisecond, cfg.StatsDebounce)
	assert.Equal(t, 1, cfg.BreakerFailureThreshold)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret, "development falls back to a local secret")
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	t.Setenv("STREAKEDIN_AI_MODEL", "gemini-2.0-flash")
	t.Setenv("STREAKEDIN_REMINDER_INTERVAL", "5s")
	t.Setenv("STREAKEDIN_ALLOWED_ORIGINS", "http://localhost:3000,https://app.streakedin.dev")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.AIModel)
	assert.Equal(t, 5*time.Second, cfg.ReminderInterval)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.streakedin.dev"}, cfg.AllowedOrigins)
}

func TestResolveDefaults_RejectsUnknownDriver(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "spanner"
	require.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaults_PostgresNeedsDSN(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = DriverPostgres
	require.Error(t, cfg.ResolveDefaults())

	cfg.PostgresDSN = "postgres://localhost/streakedin"
	require.NoError(t, cfg.ResolveDefaults())
}

func TestResolveDefaults_ProductionNeedsSecret(t *testing.T) {
	cfg := NewForTesting()
	cfg.DevMode = false
	cfg.Environment = EnvProduction
	cfg.JWTSecret = ""
	require.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaults_AutoDriver(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "auto"
	cfg.BreakerFailureThreshold = 0
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 1, cfg.BreakerFailureThreshold)
}
