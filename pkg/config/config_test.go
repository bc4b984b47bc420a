package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RECOMMENDER_BASE_URL", "")
	t.Setenv("RECOMMENDER_TIMEOUT", "")
	t.Setenv("CACHE_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.Recommender.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Recommender.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Recommender.InteractionTimeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_RecommenderOverrides(t *testing.T) {
	t.Setenv("RECOMMENDER_BASE_URL", "https://api.quickbites.test/")
	t.Setenv("RECOMMENDER_TIMEOUT", "3s")
	t.Setenv("INTERACTION_TIMEOUT", "2")
	t.Setenv("RECOMMENDER_RETRY_ATTEMPTS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.quickbites.test", cfg.Recommender.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Recommender.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Recommender.InteractionTimeout)
	assert.Equal(t, 4, cfg.Recommender.RetryAttempts)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RECOMMENDER_TIMEOUT", "soon")
	t.Setenv("CACHE_ENABLED", "maybe")
	t.Setenv("REDIS_PORT", "abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Recommender.Timeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("RECOMMENDER_TIMEOUT", "0s")

	_, err := Load()
	assert.Error(t, err)
}
