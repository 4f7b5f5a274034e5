package cache

import (
	"context"
	"sync"
	"time"

	"github.com/openfinance/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore implements IdempotencyStore using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryIdempotencyStore struct {
	mu         sync.RWMutex
	records    map[string]*shared.IdempotencyRecord
	maxEntries int
	stopChan   chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
// It starts a background goroutine to clean up expired records
func NewInMemoryIdempotencyStore(maxEntries int) *InMemoryIdempotencyStore {
	if maxEntries <= 0 {
		maxEntries = shared.DefaultIdempotencyConfig().MaxEntries
	}

	store := &InMemoryIdempotencyStore{
		records:    make(map[string]*shared.IdempotencyRecord),
		maxEntries: maxEntries,
		stopChan:   make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

func recordKey(key, participantID string) string {
	return key + "\x00" + participantID
}

// Find returns the record for (key, participantID) or nil when absent.
// Expired records are treated as absent and removed.
func (s *InMemoryIdempotencyStore) Find(ctx context.Context, key, participantID string, now time.Time) (*shared.IdempotencyRecord, error) {
	k := recordKey(key, participantID)

	s.mu.RLock()
	rec, exists := s.records[k]
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	if rec.IsExpired(now) {
		s.mu.Lock()
		// re-check under write lock, another goroutine may have replaced it
		if cur, ok := s.records[k]; ok && cur.IsExpired(now) {
			delete(s.records, k)
		}
		s.mu.Unlock()
		return nil, nil
	}

	return rec, nil
}

// Save stores a record, evicting the oldest record when at capacity
func (s *InMemoryIdempotencyStore) Save(ctx context.Context, record *shared.IdempotencyRecord) error {
	k := recordKey(record.Key, record.ParticipantID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[k]; !exists && len(s.records) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.records[k] = record
	return nil
}

// evictOldestLocked removes the record with the earliest CreatedAt.
// Caller must hold the write lock.
func (s *InMemoryIdempotencyStore) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, rec := range s.records {
		if oldestKey == "" || rec.CreatedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = rec.CreatedAt
		}
	}
	if oldestKey != "" {
		delete(s.records, oldestKey)
	}
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired records
func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup(time.Now())
		}
	}
}

// cleanup removes expired records from the store
func (s *InMemoryIdempotencyStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, rec := range s.records {
		if rec.IsExpired(now) {
			delete(s.records, k)
		}
	}
}

// Size returns the number of records in the store (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
