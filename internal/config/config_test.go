package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresSigningSecret(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwtsecret")
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("GOALTRACK_SECURITY_JWTSECRET", "from-env")
	t.Setenv("GOALTRACK_ENVIRONMENT", "production")
	t.Setenv("GOALTRACK_POSTGRES_DSN", "postgres://localhost/goaltrack")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Security.JWTSecret)
	assert.True(t, cfg.Production())
	assert.Equal(t, "postgres://localhost/goaltrack", cfg.Postgres.DSN)

	// defaults
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.Security.SessionTokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Security.ResetTokenTTL)
	assert.Empty(t, cfg.Redis.Addr)
}
