package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultRequestKeyPrefix = "foodbank:request:"

// RedisRequestStore implements shared.RequestStore using Redis.
// It is suitable for deployments where several API instances must agree on
// which submissions have already been handled.
type RedisRequestStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient creates a Redis client and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisRequestStore creates a store on an existing Redis client
func NewRedisRequestStore(client *redis.Client, keyPrefix string) *RedisRequestStore {
	if keyPrefix == "" {
		keyPrefix = defaultRequestKeyPrefix
	}
	return &RedisRequestStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim reserves key with SETNX. When the key already exists the stored
// record is returned instead.
func (s *RedisRequestStore) Claim(ctx context.Context, key string, ttl time.Duration) (*shared.RequestRecord, error) {
	pending, err := json.Marshal(shared.RequestRecord{Key: key, State: shared.RequestStatePending})
	if err != nil {
		return nil, err
	}

	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pending, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim request key: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; let the caller retry the claim
		return &shared.RequestRecord{Key: key, State: shared.RequestStatePending}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request key: %w", err)
	}

	var record shared.RequestRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode request record: %w", err)
	}
	return &record, nil
}

// Complete stores the result of a claimed request
func (s *RedisRequestStore) Complete(ctx context.Context, key string, resultID int64, ttl time.Duration) error {
	done, err := json.Marshal(shared.RequestRecord{Key: key, State: shared.RequestStateCompleted, ResultID: resultID})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, done, ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete request key: %w", err)
	}
	return nil
}

// Release deletes a claimed key
func (s *RedisRequestStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release request key: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisRequestStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisRequestStore) Close() error {
	return s.client.Close()
}

var _ shared.RequestStore = (*RedisRequestStore)(nil)
