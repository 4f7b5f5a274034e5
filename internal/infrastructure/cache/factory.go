package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/config"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	idempotency config.IdempotencyConfig
	redis       config.RedisConfig
	logger      *zap.Logger
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(idempotency config.IdempotencyConfig, redis config.RedisConfig, logger *zap.Logger) *IdempotencyStoreFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotencyStoreFactory{
		idempotency: idempotency,
		redis:       redis,
		logger:      logger,
	}
}

// CreateStore creates the configured idempotency store backend. The redis
// backend falls back to in-memory when Redis is unreachable; in-memory stores
// do not share state across instances, so the fallback is logged loudly.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	switch f.idempotency.Backend {
	case "memory":
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(f.idempotency.MaxEntries), nil
	case "redis":
		store, err := NewRedisIdempotencyStore(RedisConfig{
			Addr:     f.redis.Addr(),
			Password: f.redis.Password,
			DB:       f.redis.DB,
		})
		if err == nil {
			f.logger.Info("using Redis idempotency store")
			return store, nil
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(f.idempotency.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", f.idempotency.Backend)
	}
}
