package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/reviews")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8001", cfg.AuthServiceURL)
	assert.Equal(t, 5*time.Second, cfg.AuthTimeout)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("WS_HEARTBEAT_INTERVAL", "10s")
	t.Setenv("WS_WRITE_TIMEOUT", "3s")
	t.Setenv("AUTH_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 2*time.Second, cfg.AuthTimeout)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	// t.Setenv records the original value for restore; the unset makes
	// the variable truly absent for this test
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/reviews")
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_EnvironmentHelpers(t *testing.T) {
	dev := Config{Environment: "development"}
	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())

	prod := Config{Environment: "production"}
	assert.True(t, prod.IsProduction())
	assert.False(t, prod.IsDevelopment())
}
