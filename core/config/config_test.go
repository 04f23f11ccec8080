package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, cfg.Hardcover.ApiToken)
	assert.Equal(t, "https://api.hardcover.app/v1/graphql", cfg.Hardcover.Endpoint)
	assert.InDelta(t, 1.1, cfg.Hardcover.RateLimitDelay, 0.0001)
	assert.Equal(t, 30, cfg.Hardcover.TimeoutSeconds)
	assert.False(t, cfg.Sync.OwnedOnly)
	assert.False(t, cfg.Sync.DryRun)
	assert.Equal(t, "metadata.db", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.ReadOnly)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("HARDCOVER_API_TOKEN", "secret-token")
	t.Setenv("HARDCOVER_RATE_LIMIT_DELAY", "2.5")
	t.Setenv("SYNC_OWNED_ONLY", "true")
	t.Setenv("CATALOG_PATH", "/books/metadata.db")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Hardcover.ApiToken)
	assert.InDelta(t, 2.5, cfg.Hardcover.RateLimitDelay, 0.0001)
	assert.True(t, cfg.Sync.OwnedOnly)
	assert.Equal(t, "/books/metadata.db", cfg.Catalog.Path)
}

func TestLoadConfigRateLimitFallback(t *testing.T) {
	t.Run("Unparseable value", func(t *testing.T) {
		t.Setenv("HARDCOVER_RATE_LIMIT_DELAY", "soon")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.InDelta(t, 1.1, cfg.Hardcover.RateLimitDelay, 0.0001)
	})

	t.Run("Non-positive value", func(t *testing.T) {
		t.Setenv("HARDCOVER_RATE_LIMIT_DELAY", "-3")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.InDelta(t, 1.1, cfg.Hardcover.RateLimitDelay, 0.0001)
	})
}
