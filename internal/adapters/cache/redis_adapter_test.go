package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/quickbites/client/internal/infrastructure/clients/redis"
	"github.com/quickbites/client/pkg/config"
)

// Nothing listens on port 1, so every command fails fast with a dial error.
func unreachableClient() *redisclient.Client {
	return redisclient.NewFromRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	}))
}

func TestRedisAdapter_WrapsConnectionErrors(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	adapter := NewRedisAdapter(client)
	ctx := context.Background()

	_, err := adapter.Get(ctx, "recommend:x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get from cache")

	err = adapter.Set(ctx, "recommend:x", []byte("[]"), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set in cache")

	err = adapter.Delete(ctx, "recommend:x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete from cache")
}

func TestNewClient_FailsWithoutServer(t *testing.T) {
	_, err := redisclient.NewClient(context.Background(), &config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
