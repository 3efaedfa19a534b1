package driven

import (
	"context"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// VectorStore is a named collection of embedded chunks.
// The collection name and location are fixed when the store is constructed.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context) error

	// Add stores entries and returns how many were inserted. Either every
	// new entry is stored or none is. An entry whose ID already exists leaves
	// the stored entry unchanged and is not counted.
	Add(ctx context.Context, entries []domain.IndexedEntry) (int, error)

	// Search returns the k entries most similar to the query vector,
	// most similar first. A missing collection yields no results.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredRecord, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Drop deletes the collection and everything persisted for it.
	// It reports whether there was anything to delete.
	Drop(ctx context.Context) (bool, error)

	// Name identifies the backend (e.g. "sqlite").
	Name() string

	// Close releases resources.
	Close() error
}
