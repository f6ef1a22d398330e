package persistence

import (
	"context"
	"slices"
	"sync"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// InMemoryStore is a simple, goroutine-safe SnapshotStore backed by a map.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]api.Snapshot
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		snapshots: make(map[string]api.Snapshot),
	}
}

func (s *InMemoryStore) SaveSnapshot(ctx context.Context, snap api.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.Key] = cloneSnapshot(snap)
	return nil
}

func (s *InMemoryStore) LoadSnapshot(ctx context.Context, key string) (*api.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[key]
	if !ok {
		return nil, api.ErrSnapshotNotFound
	}

	out := cloneSnapshot(snap)
	return &out, nil
}

func (s *InMemoryStore) DeleteSnapshot(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, key)
	return nil
}

func (s *InMemoryStore) ListSnapshotKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.snapshots))
	for k := range s.snapshots {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
