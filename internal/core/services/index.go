package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// DefaultEmbedBatchSize is the number of chunks embedded per provider call.
const DefaultEmbedBatchSize = 64

// entryNamespace scopes content-addressed entry IDs.
var entryNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("scholarsync.entry"))

// IndexService embeds chunks and keeps them in a vector store.
// Add and Clear are exclusive; Query and Stats may run concurrently.
type IndexService struct {
	mu        sync.RWMutex
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	dedupe    bool
	batchSize int
	location  string
}

// IndexOption configures an IndexService.
type IndexOption func(*IndexService)

// WithDedupe toggles content-addressed entry IDs.
func WithDedupe(enabled bool) IndexOption {
	return func(s *IndexService) { s.dedupe = enabled }
}

// WithEmbedBatchSize sets how many chunks are embedded per call.
func WithEmbedBatchSize(n int) IndexOption {
	return func(s *IndexService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLocation records where the collection lives, for Stats.
func WithLocation(location string) IndexOption {
	return func(s *IndexService) { s.location = location }
}

// NewIndexService creates an index over store. Dedupe is on by default.
func NewIndexService(store driven.VectorStore, embedder driven.EmbeddingService, opts ...IndexOption) *IndexService {
	s := &IndexService{
		store:     store,
		embedder:  embedder,
		dedupe:    true,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates the collection if it does not exist.
func (s *IndexService) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	return nil
}

// Add embeds chunks, stores them and returns how many new entries were
// written. Chunks already stored under the same ID are not counted. Any
// failure returns domain.ErrIndexWrite and nothing from this call is kept.
func (s *IndexService) Add(ctx context.Context, chunks []domain.Record) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if s.embedder == nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIndexWrite, domain.ErrEmbeddingUnavailable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Index")
	logger.Debug("Embedding %d chunks with %s", len(chunks), s.embedder.ModelName())
	defer logger.Since("Indexing", time.Now())

	entries := make([]domain.IndexedEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content()
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("%w: embed chunks %d-%d: %w", domain.ErrIndexWrite, start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
				domain.ErrIndexWrite, len(vectors), len(batch))
		}

		for i, c := range batch {
			entries = append(entries, domain.IndexedEntry{
				ID:        s.entryID(c),
				Record:    c,
				Embedding: vectors[i],
			})
		}
	}

	written, err := s.store.Add(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIndexWrite, err)
	}
	if skipped := len(entries) - written; skipped > 0 {
		logger.Info("Indexed %d chunks into %s (%d already stored)", written, s.store.Name(), skipped)
	} else {
		logger.Info("Indexed %d chunks into %s", written, s.store.Name())
	}
	return written, nil
}

func (s *IndexService) entryID(r domain.Record) string {
	if !s.dedupe {
		return uuid.NewString()
	}
	return EntryID(r)
}

// EntryID returns the content-addressed ID of a chunk: a name-based UUID
// over the SHA-256 of its source, type and content.
func EntryID(r domain.Record) string {
	h := sha256.New()
	for _, part := range []string{r.Source(), r.Type().String(), r.Content()} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return uuid.NewSHA1(entryNamespace, h.Sum(nil)).String()
}

// Query returns the k chunks most similar to text. k <= 0 uses the default.
func (s *IndexService) Query(ctx context.Context, text string, k int) ([]domain.ScoredRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.store.Name(), err)
	}
	logger.Debug("Retrieved %d chunks (k=%d)", len(results), k)
	return results, nil
}

// Clear drops the collection. It reports whether anything existed.
func (s *IndexService) Clear(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existed, err := s.store.Drop(ctx)
	if err != nil {
		return existed, fmt.Errorf("clear index: %w", err)
	}
	logger.Info("Cleared index (existed=%t)", existed)
	return existed, nil
}

// Stats describes the collection.
func (s *IndexService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	stats := &domain.IndexStats{
		Dir:     s.location,
		Backend: s.store.Name(),
		Entries: n,
	}
	if named, ok := s.store.(interface{ Collection() string }); ok {
		stats.Collection = named.Collection()
	}
	return stats, nil
}
