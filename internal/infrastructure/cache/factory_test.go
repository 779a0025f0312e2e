package cache

import (
	"context"
	"testing"

	"github.com/edi/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, &config.Config{Idempotency: config.IdempotencyConfig{Backend: BackendMemory}}, nil)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("unreachable redis falls back outside production", func(t *testing.T) {
		cfg := &config.Config{
			App:         config.AppConfig{Env: "development"},
			Redis:       config.RedisConfig{Host: "127.0.0.1", Port: 1},
			Idempotency: config.IdempotencyConfig{Backend: BackendRedis},
		}
		store, err := NewIdempotencyStore(ctx, cfg, nil)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("unreachable redis fails in production", func(t *testing.T) {
		cfg := &config.Config{
			App:         config.AppConfig{Env: "production"},
			Redis:       config.RedisConfig{Host: "127.0.0.1", Port: 1},
			Idempotency: config.IdempotencyConfig{Backend: BackendRedis},
		}
		_, err := NewIdempotencyStore(ctx, cfg, nil)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewIdempotencyStore(ctx, &config.Config{Idempotency: config.IdempotencyConfig{Backend: "memcached"}}, nil)
		assert.Error(t, err)
	})
}
