package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Autotask: AutotaskConfig{
			Username:        "api-user@example.com",
			Secret:          "secret",
			IntegrationCode: "code",
		},
		Sync:  SyncConfig{BatchQuerySize: 400, CompletedWindow: 8 * time.Hour},
		Retry: RetryConfig{MaxAttempts: 4},
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Sync.BatchQuerySize)
	assert.Equal(t, 8*time.Hour, cfg.Sync.CompletedWindow)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.Equal(t, 3.0, cfg.Autotask.RequestsPerSecond)
	assert.NotEmpty(t, cfg.Autotask.ZoneInfoURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SYNC_BATCH_QUERY_SIZE", "250")
	t.Setenv("SYNC_COMPLETED_WINDOW", "4h")
	t.Setenv("RETRY_MAX_ATTEMPTS", "2")
	t.Setenv("POSTGRES_HOST", "db.internal")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Sync.BatchQuerySize)
	assert.Equal(t, 4*time.Hour, cfg.Sync.CompletedWindow)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
}

func TestValidate(t *testing.T) {
	t.Run("accepts a complete config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Autotask.Secret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects batch size above the server ceiling", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sync.BatchQuerySize = 501
		assert.ErrorContains(t, cfg.Validate(), "SYNC_BATCH_QUERY_SIZE")
	})

	t.Run("rejects zero retry attempts", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.MaxAttempts = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestPostgresURL(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     "5432",
		Database: "autotask_sync",
		User:     "autotask",
		Password: "pw",
	}
	assert.Equal(t, "postgres://autotask:pw@localhost:5432/autotask_sync?sslmode=disable", cfg.URL())
}
