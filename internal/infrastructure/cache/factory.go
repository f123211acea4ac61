package cache

import (
	"context"
	"fmt"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RequestStoreFactory creates request stores based on configuration
type RequestStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RequestStoreFactoryOption is a functional option for configuring the factory
type RequestStoreFactoryOption func(*RequestStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RequestStoreFactoryOption {
	return func(f *RequestStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) RequestStoreFactoryOption {
	return func(f *RequestStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRequestStoreFactory creates a new factory
func NewRequestStoreFactory(cfg config.RedisConfig, opts ...RequestStoreFactoryOption) *RequestStoreFactory {
	f := &RequestStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the store for the given backend ("redis" or "memory")
func (f *RequestStoreFactory) CreateStore(ctx context.Context, backend string) (shared.RequestStore, error) {
	if backend != "redis" {
		f.logger.Info("Using in-memory request store")
		return NewInMemoryRequestStore(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig.Addr(), f.redisConfig.Password, f.redisConfig.DB)
	if err == nil {
		f.logger.Info("Using Redis request store", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisRequestStore(client, ""), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory request store; "+
		"duplicate submissions are only detected per instance",
		zap.Error(err),
	)
	return NewInMemoryRequestStore(), nil
}
