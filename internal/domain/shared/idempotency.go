package shared

import (
	"context"
	"time"
)

// RequestState is the lifecycle state of an idempotency key
type RequestState string

const (
	RequestStatePending   RequestState = "PENDING"
	RequestStateCompleted RequestState = "COMPLETED"
)

// RequestRecord is what a RequestStore remembers about a key
type RequestRecord struct {
	Key      string       `json:"key"`
	State    RequestState `json:"state"`
	ResultID int64        `json:"result_id,omitempty"`
}

// RequestStore guards state-changing requests against duplicate submission.
//
// Claim atomically reserves key. It returns (nil, nil) when the caller now
// owns the key, or the existing record when someone else claimed it first.
type RequestStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (*RequestRecord, error)
	// Complete marks a claimed key as finished with the given result
	Complete(ctx context.Context, key string, resultID int64, ttl time.Duration) error
	// Release forgets a claimed key so the request can be retried
	Release(ctx context.Context, key string) error
	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered after it is claimed
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
