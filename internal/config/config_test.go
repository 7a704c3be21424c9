package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.AttemptRetention)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 30, cfg.Auth.AuthRequestsPerMin)
	assert.Equal(t, 300, cfg.Auth.UserRequestsPerMin)
}

func TestLoad_LimiterDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Limiter.MaxFailedAttempts)
	assert.Equal(t, 1*time.Minute, cfg.Limiter.RecentWindow)
	assert.Equal(t, 30*time.Minute, cfg.Limiter.BlockWindow)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "test")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD is required")
}

func TestLoad_WeakSecretRejectedInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "only-twenty-chars!!!")

	_, err := Load()
	assert.ErrorContains(t, err, "at least 32 characters")
}

func TestLoad_RetentionShorterThanBlockWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_ATTEMPT_RETENTION", "10m")

	_, err := Load()
	assert.ErrorContains(t, err, "LOGIN_ATTEMPT_RETENTION")
}

func TestLoad_InvalidLimiterValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero max attempts", "LOGIN_MAX_FAILED_ATTEMPTS", "0"},
		{"negative recent window", "LOGIN_RECENT_WINDOW", "-1m"},
		{"zero block window", "LOGIN_BLOCK_WINDOW", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestServerConfig_Timeouts_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("SERVER_WRITE_TIMEOUT", "45s")
	t.Setenv("SERVER_IDLE_TIMEOUT", "120s")

	cfg, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"ReadTimeout", cfg.Server.ReadTimeout, 30 * time.Second},
		{"WriteTimeout", cfg.Server.WriteTimeout, 45 * time.Second},
		{"IdleTimeout", cfg.Server.IdleTimeout, 120 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.actual, tt.name)
	}
}

func TestServerConfig_Timeouts_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	// Invalid duration should fall back to default
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_TrustedProxiesParsed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1/32,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1/32"}, cfg.Server.TrustedProxies)
}

func TestDSN(t *testing.T) {
	c := &DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=require", c.DSN())
}

func TestLoadDatabase_DoesNotNeedJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "test")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
}

func TestLoad_UnparseableLimiterValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"recent window without unit", "LOGIN_RECENT_WINDOW", "60"},
		{"block window garbage", "LOGIN_BLOCK_WINDOW", "half an hour"},
		{"max attempts as word", "LOGIN_MAX_FAILED_ATTEMPTS", "five"},
		{"retention without unit", "LOGIN_ATTEMPT_RETENTION", "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_RetentionCoversRecentWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_RECENT_WINDOW", "2h")
	t.Setenv("LOGIN_BLOCK_WINDOW", "30m")
	t.Setenv("LOGIN_ATTEMPT_RETENTION", "1h")

	_, err := Load()
	assert.ErrorContains(t, err, "LOGIN_ATTEMPT_RETENTION")

	t.Setenv("LOGIN_ATTEMPT_RETENTION", "2h")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AttemptRetention)
}
