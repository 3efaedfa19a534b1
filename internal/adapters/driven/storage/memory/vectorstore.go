package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/storage/similarity"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a process-local driven.VectorStore using brute-force cosine similarity.
// Contents are lost when the process exits.
type VectorStore struct {
	mu         sync.RWMutex
	collection string
	exists     bool
	ids        map[string]struct{}
	entries    []similarity.Candidate
}

// NewVectorStore creates an empty store for collection.
func NewVectorStore(collection string) *VectorStore {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	return &VectorStore{
		collection: collection,
		ids:        make(map[string]struct{}),
	}
}

// Name returns the backend name.
func (s *VectorStore) Name() string { return "memory" }

// Collection returns the collection name.
func (s *VectorStore) Collection() string { return s.collection }

// EnsureCollection marks the collection as existing.
func (s *VectorStore) EnsureCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = true
	return nil
}

// Add appends entries whose IDs are not yet stored.
func (s *VectorStore) Add(_ context.Context, entries []domain.IndexedEntry) (int, error) {
	for _, e := range entries {
		if e.ID == "" {
			return 0, domain.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.exists = true
	inserted := 0
	for _, e := range entries {
		if _, dup := s.ids[e.ID]; dup {
			continue
		}
		s.ids[e.ID] = struct{}{}
		s.entries = append(s.entries, similarity.Candidate{
			Record:    e.Record,
			Embedding: slices.Clone(e.Embedding),
		})
		inserted++
	}
	return inserted, nil
}

// Search returns the k entries most similar to query.
func (s *VectorStore) Search(_ context.Context, query []float32, k int) ([]domain.ScoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return similarity.TopK(s.entries, query, k)
}

// Count returns the number of stored entries.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Drop empties the store.
func (s *VectorStore) Drop(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existed := s.exists || len(s.entries) > 0
	s.exists = false
	s.entries = nil
	s.ids = make(map[string]struct{})
	return existed, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error { return nil }
