package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// Store retains checkout responses for replaying duplicate requests.
// Entries age out after the retention window so a long-lived process
// does not accumulate keys forever.
type Store struct {
	mu        sync.RWMutex
	items     map[string]entry
	retention time.Duration
}

type entry struct {
	response ports.StoredResponse
	savedAt  time.Time
}

// NewStore creates a new in-memory idempotency store.
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Store{
		items:     make(map[string]entry),
		retention: retention,
	}
}

// Get returns the stored response for a given key if present and fresh.
func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	value, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Since(value.savedAt) > s.retention {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, nil
	}

	response := value.response
	return &response, nil
}

// Save stores the response for a key. The first writer wins.
func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[key]; ok && time.Since(existing.savedAt) <= s.retention {
		return nil
	}
	s.items[key] = entry{response: response, savedAt: time.Now()}
	return nil
}
