package analysis

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store. Nothing in this
// service persists across restarts; this is the only store implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	assessments map[string][]*Assessment // address → assessments, oldest first
}

// NewMemoryStore creates an in-memory assessment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assessments: make(map[string][]*Assessment),
	}
}

func (s *MemoryStore) Record(ctx context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.assessments[a.Address] = append(s.assessments[a.Address], &cp)
	return nil
}

func (s *MemoryStore) ListByAddress(ctx context.Context, address string, limit int) ([]*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.assessments[address]
	if len(all) == 0 {
		return nil, nil
	}

	start := len(all) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}

	// Most recent first
	result := make([]*Assessment, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		cp := *all[i]
		result = append(result, &cp)
	}
	return result, nil
}
