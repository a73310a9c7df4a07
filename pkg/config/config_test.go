package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/stockroom/pkg/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.Equal(t, "dir", cfg.Archive.Target)
	assert.Equal(t, "5 0 * * *", cfg.Archive.Schedule)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STOCKROOM_PORT", "9999")
	t.Setenv("STOCKROOM_STORAGE_TYPE", "postgres")
	t.Setenv("STOCKROOM_POSTGRES_URL", "postgres://localhost/stockroom?sslmode=disable")
	t.Setenv("STOCKROOM_LOG_LEVEL", "debug")
	t.Setenv("STOCKROOM_CACHE_ENABLED", "true")
	t.Setenv("STOCKROOM_AUTH_TOKENS", "tok1=alice:admin")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.True(t, cfg.Storage.CacheEnabled)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, "tok1=alice:admin", cfg.Auth.Tokens)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Run("postgres without URL", func(t *testing.T) {
		t.Setenv("STOCKROOM_STORAGE_TYPE", "postgres")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("same ports", func(t *testing.T) {
		t.Setenv("STOCKROOM_PORT", "8080")
		t.Setenv("STOCKROOM_HEALTH_PORT", "8080")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("unknown archive target", func(t *testing.T) {
		t.Setenv("STOCKROOM_ARCHIVE_TARGET", "ftp")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("s3 target without bucket", func(t *testing.T) {
		t.Setenv("STOCKROOM_ARCHIVE_TARGET", "s3")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("STOCKROOM_TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("STOCKROOM_TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("STOCKROOM_TEST_MISSING", time.Minute))

	t.Setenv("STOCKROOM_TEST_BOOL", "1")
	assert.True(t, getEnvBool("STOCKROOM_TEST_BOOL", false))

	t.Setenv("STOCKROOM_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("STOCKROOM_TEST_INT", 7))
}
