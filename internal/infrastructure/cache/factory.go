package cache

import (
	"context"
	"fmt"

	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// NewIdempotencyStore builds the store selected by cfg.Idempotency.Backend.
// Outside production an unreachable Redis falls back to memory with a warning.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Idempotency.Backend {
	case "", BackendMemory:
		logger.Info("Using in-memory idempotency store")
		return NewMemoryStore(), nil
	case BackendRedis:
		store, err := DialRedisStore(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
			return store, nil
		}
		if cfg.IsProduction() {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"Repeated webhook deliveries are only recognised per instance.",
			zap.Error(err),
		)
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}
