package cache

import (
	"context"
	"sync"
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
)

type requestEntry struct {
	record    shared.RequestRecord
	expiresAt time.Time
}

// InMemoryRequestStore implements shared.RequestStore using an in-memory map.
// It is suitable for single-instance deployments and testing.
type InMemoryRequestStore struct {
	mu        sync.Mutex
	entries   map[string]requestEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRequestStore creates a new in-memory request store and starts a
// background goroutine that drops expired keys
func NewInMemoryRequestStore() *InMemoryRequestStore {
	store := &InMemoryRequestStore{
		entries:  make(map[string]requestEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(5 * time.Minute)

	return store
}

// Claim reserves key unless a live entry already exists
func (s *InMemoryRequestStore) Claim(_ context.Context, key string, ttl time.Duration) (*shared.RequestRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		record := e.record
		return &record, nil
	}

	s.entries[key] = requestEntry{
		record:    shared.RequestRecord{Key: key, State: shared.RequestStatePending},
		expiresAt: now.Add(ttl),
	}
	return nil, nil
}

// Complete stores the result of a claimed request
func (s *InMemoryRequestStore) Complete(_ context.Context, key string, resultID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = requestEntry{
		record:    shared.RequestRecord{Key: key, State: shared.RequestStateCompleted, ResultID: resultID},
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Release forgets a claimed key
func (s *InMemoryRequestStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryRequestStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored keys, expired ones included
func (s *InMemoryRequestStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemoryRequestStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryRequestStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ shared.RequestStore = (*InMemoryRequestStore)(nil)
