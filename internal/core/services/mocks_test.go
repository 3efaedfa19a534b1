package services

import (
	"context"
	"errors"
	"sync"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Texts found in vectors get that vector; everything else gets fallback.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    int
	batches  [][]string
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.fallback != nil {
		return m.fallback
	}
	return []float32{1, 0}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response string
	err      error
	prompts  []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockDispatcher implements driven.Dispatcher for testing.
type mockDispatcher struct {
	mu      sync.Mutex
	records map[string][]domain.Record
	errs    map[string]error
	loaded  []string
	block   chan struct{}
}

func (m *mockDispatcher) Load(ctx context.Context, path string) ([]domain.Record, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	m.loaded = append(m.loaded, path)
	m.mu.Unlock()
	if err := m.errs[path]; err != nil {
		return nil, err
	}
	return m.records[path], nil
}

// mockPipeline implements driven.PostProcessorPipeline by appending a
// marker to every record's content.
type mockPipeline struct {
	err   error
	calls int
}

func (m *mockPipeline) Process(_ context.Context, records []domain.Record) ([]domain.Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Record, len(records))
	for i, r := range records {
		out[i] = r.WithContent(r.Content() + " [split]")
	}
	return out, nil
}

// mockIndexer implements ChunkIndexer for testing.
type mockIndexer struct {
	added []domain.Record
	err   error
}

func (m *mockIndexer) Add(_ context.Context, chunks []domain.Record) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.added = append(m.added, chunks...)
	return len(chunks), nil
}

// mockRetriever implements Retriever for testing.
type mockRetriever struct {
	results []domain.ScoredRecord
	err     error
	gotK    int
}

func (m *mockRetriever) Query(_ context.Context, _ string, k int) ([]domain.ScoredRecord, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockQueryLogger implements driven.QueryLogger for testing.
type mockQueryLogger struct {
	entries []driven.QueryLogEntry
}

func (m *mockQueryLogger) Log(entry driven.QueryLogEntry) {
	m.entries = append(m.entries, entry)
}

// failingStore implements driven.VectorStore with configurable failures.
type failingStore struct {
	addErr    error
	searchErr error
	countErr  error
	dropErr   error
}

func (f *failingStore) EnsureCollection(_ context.Context) error { return nil }
func (f *failingStore) Add(_ context.Context, entries []domain.IndexedEntry) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	return len(entries), nil
}
func (f *failingStore) Search(_ context.Context, _ []float32, _ int) ([]domain.ScoredRecord, error) {
	return nil, f.searchErr
}
func (f *failingStore) Count(_ context.Context) (int, error) { return 0, f.countErr }
func (f *failingStore) Drop(_ context.Context) (bool, error) { return false, f.dropErr }
func (f *failingStore) Name() string                         { return "failing" }
func (f *failingStore) Close() error                         { return nil }

func docRecord(path, content string) domain.Record {
	return domain.NewSourceRecord(path, domain.RecordTypeDocument, content)
}
