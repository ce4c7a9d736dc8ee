package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_TOKEN_TTL_MINUTES", "")
	t.Setenv("DATABASE_TYPE", "")

	cfg := Load()

	assert.Equal(t, "telcox", cfg.AppName)
	assert.Equal(t, 1440*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_TOKEN_TTL_MINUTES", "30")
	t.Setenv("DATABASE_TYPE", "SQLite")
	t.Setenv("REDIS_ENABLED", "yes")
	t.Setenv("RATE_LIMIT_LOGIN_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.LoginBurst)
}

func TestLoadTelemetry(t *testing.T) {
	t.Setenv("DEPLOYMENT_ENV", "staging")
	t.Setenv("SERVICE_VERSION", "2.1.0")
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")

	cfg := Load()

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "2.1.0", cfg.AppVersion)
	assert.Equal(t, "debug", cfg.Telemetry.LogLevel)
	assert.True(t, cfg.Telemetry.OtelEnabled)
	assert.Equal(t, "collector:4317", cfg.Telemetry.OtelEndpoint)
	assert.Equal(t, "http", cfg.Telemetry.OtelProtocol)
	assert.Equal(t, 0.25, cfg.Telemetry.OtelSamplingRatio)
}

func TestValidateDashboardConfig(t *testing.T) {
	require.NoError(t, validateDashboardConfig(DefaultDashboardConfig()))

	invalid := DefaultDashboardConfig()
	invalid.MaxDays = 3
	require.Error(t, validateDashboardConfig(invalid))

	invalid = DefaultDashboardConfig()
	invalid.DefaultMonths = 0
	require.Error(t, validateDashboardConfig(invalid))
}

func TestStaticDashboardConfigHolder(t *testing.T) {
	holder := NewStaticDashboardConfigHolder(DashboardConfig{DefaultDays: 3, DefaultMonths: 2, MaxDays: 10, MaxMonths: 4})
	assert.Equal(t, 3, holder.Get().DefaultDays)
	assert.Equal(t, 4, holder.Get().MaxMonths)
}
