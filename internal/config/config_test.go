package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/feria")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
	assert.Equal(t, time.Hour, cfg.ReconcileInterval)
	assert.False(t, cfg.StrictScheduleOrder)
	assert.Equal(t, uint(1), cfg.SystemActorID)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "./data/feria.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("TX_TIMEOUT", "3s")
	t.Setenv("STRICT_SCHEDULE_ORDER", "true")
	t.Setenv("SYSTEM_ACTOR_ID", "42")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 3*time.Second, cfg.TxTimeout)
	assert.True(t, cfg.StrictScheduleOrder)
	assert.Equal(t, uint(42), cfg.SystemActorID)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/feria")
	t.Setenv("TX_TIMEOUT", "soon")
	t.Setenv("WORKER_COUNT", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
	assert.Equal(t, 2, cfg.WorkerCount)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing database url", env: map[string]string{"DATABASE_URL": ""}},
		{name: "unknown driver", env: map[string]string{"DATABASE_URL": "x", "DATABASE_DRIVER": "oracle"}},
		{name: "zero system actor", env: map[string]string{"DATABASE_URL": "x", "SYSTEM_ACTOR_ID": "0"}},
		{name: "negative system actor", env: map[string]string{"DATABASE_URL": "x", "SYSTEM_ACTOR_ID": "-1"}},
		{name: "non numeric system actor", env: map[string]string{"DATABASE_URL": "x", "SYSTEM_ACTOR_ID": "root"}},
		{name: "system actor beyond column range", env: map[string]string{"DATABASE_URL": "x", "SYSTEM_ACTOR_ID": "18446744073709551615"}},
		{name: "zero reconcile interval", env: map[string]string{"DATABASE_URL": "x", "RECONCILE_INTERVAL": "0s"}},
		{name: "negative reconcile interval", env: map[string]string{"DATABASE_URL": "x", "RECONCILE_INTERVAL": "-5m"}},
		{name: "zero tx timeout", env: map[string]string{"DATABASE_URL": "x", "TX_TIMEOUT": "0s"}},
		{name: "negative tx timeout", env: map[string]string{"DATABASE_URL": "x", "TX_TIMEOUT": "-1s"}},
		{name: "zero workers", env: map[string]string{"DATABASE_URL": "x", "WORKER_COUNT": "0"}},
		{name: "production without secret", env: map[string]string{"DATABASE_URL": "x", "ENVIRONMENT": "production", "JWT_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.Error(t, err)
		})
	}
}
