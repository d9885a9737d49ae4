package history

import (
	"context"
	"sort"
	"sync"
	"time"

	dErrors "certichain/pkg/domain-errors"
)

// MemoryStore is the in-process history store for tests and --dev runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uint64]Entry
}

func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[uint64]Entry)}
}

func (s *MemoryStore) Record(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.IssuedAt.IsZero() {
		entry.IssuedAt = time.Now().UTC()
	}
	s.entries[entry.TokenID] = entry
	return nil
}

func (s *MemoryStore) FindByToken(_ context.Context, tokenID uint64) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[tokenID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no issuance history for token id %d", tokenID)
	}
	return &entry, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].IssuedAt.After(entries[j].IssuedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

var _ Store = (*MemoryStore)(nil)
