package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/tickets")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 4*time.Hour, cfg.RemindInterval)
	assert.Equal(t, "*", cfg.FrontendOrigin)
	assert.False(t, cfg.TelegramEnabled())
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestNormalizeDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://u:p@db:5432/tickets?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/tickets?sslmode=disable", cfg.DatabaseURL)
}

func TestRemindIntervalOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/tickets")
	t.Setenv("REMIND_INTERVAL_SECONDS", "600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.RemindInterval)
}
