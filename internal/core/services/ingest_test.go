package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

type progressCall struct {
	index, total int
	filename     string
}

func recordProgress(calls *[]progressCall) driving.ProgressFunc {
	return func(index, total int, filename string) {
		*calls = append(*calls, progressCall{index, total, filename})
	}
}

func TestIngestService_LoadAndSplit_Success(t *testing.T) {
	loader := &mockDispatcher{records: map[string][]domain.Record{
		"/in/a.pdf":  {docRecord("/in/a.pdf", "page one"), docRecord("/in/a.pdf", "page two")},
		"/in/b.docx": {docRecord("/in/b.docx", "body")},
	}}
	pipeline := &mockPipeline{}
	svc := NewIngestService(loader, pipeline, nil, 1)

	var calls []progressCall
	result, err := svc.LoadAndSplit(context.Background(),
		[]string{"/in/a.pdf", "/in/b.docx"}, recordProgress(&calls))
	require.NoError(t, err)

	assert.True(t, result.OK())
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Chunks, 3)
	assert.Equal(t, "page one [split]", result.Chunks[0].Content())
	assert.Equal(t, "body [split]", result.Chunks[2].Content())
	assert.Empty(t, result.Failed)
	assert.Empty(t, result.Ignored)
	assert.Equal(t, "Successfully ingested 2 files (3 chunks).", result.Message)
	assert.Equal(t, 1, pipeline.calls)

	assert.Equal(t, []progressCall{{0, 2, "a.pdf"}, {1, 2, "b.docx"}}, calls)
}

func TestIngestService_LoadAndSplit_IgnoredAndFailed(t *testing.T) {
	loader := &mockDispatcher{
		records: map[string][]domain.Record{"/in/ok.csv": {docRecord("/in/ok.csv", "table")}},
		errs:    map[string]error{"/in/bad.pdf": fmt.Errorf("%w: encrypted", domain.ErrLoadFailure)},
	}
	svc := NewIngestService(loader, &mockPipeline{}, nil, 1)

	var calls []progressCall
	paths := []string{"/in/notes.txt", "/in/bad.pdf", "/in/ok.csv", "/in/archive.zip"}
	result, err := svc.LoadAndSplit(context.Background(), paths, recordProgress(&calls))
	require.NoError(t, err)

	assert.True(t, result.OK())
	assert.Equal(t, []string{"notes.txt", "archive.zip"}, result.Ignored)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bad.pdf", result.Failed[0].Filename)
	assert.Contains(t, result.Failed[0].Message, "encrypted")
	assert.Equal(t, 1, result.Succeeded())
	assert.Equal(t, "Successfully ingested 1 files (1 chunks). Ignored: notes.txt, archive.zip.", result.Message)

	// Unsupported files are reported to the listener but never loaded.
	assert.Len(t, calls, 4)
	assert.ElementsMatch(t, []string{"/in/bad.pdf", "/in/ok.csv"}, loader.loaded)
}

func TestIngestService_LoadAndSplit_NoDocuments(t *testing.T) {
	loader := &mockDispatcher{errs: map[string]error{"/in/a.pdf": errors.New("corrupt")}}
	pipeline := &mockPipeline{}
	svc := NewIngestService(loader, pipeline, nil, 1)

	result, err := svc.LoadAndSplit(context.Background(), []string{"/in/a.pdf", "/in/b.txt"}, nil)
	require.NoError(t, err)

	assert.False(t, result.OK())
	assert.Equal(t, domain.IngestionError, result.Status)
	assert.Equal(t, domain.MessageNoDocuments, result.Message)
	assert.Empty(t, result.Chunks)
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, []string{"b.txt"}, result.Ignored)
	assert.Zero(t, pipeline.calls)
}

func TestIngestService_LoadAndSplit_EmptyBatch(t *testing.T) {
	svc := NewIngestService(&mockDispatcher{}, &mockPipeline{}, nil, 1)

	result, err := svc.LoadAndSplit(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionError, result.Status)
	assert.Equal(t, domain.MessageNoDocuments, result.Message)
	assert.Zero(t, result.Total)
}

func TestIngestService_LoadAndSplit_ParallelKeepsInputOrder(t *testing.T) {
	records := make(map[string][]domain.Record)
	var paths []string
	for i := range 12 {
		p := fmt.Sprintf("/in/f%02d.pdf", i)
		paths = append(paths, p)
		records[p] = []domain.Record{docRecord(p, fmt.Sprintf("content %02d", i))}
	}
	svc := NewIngestService(&mockDispatcher{records: records}, nil, nil, 4)

	var calls []progressCall
	result, err := svc.LoadAndSplit(context.Background(), paths, recordProgress(&calls))
	require.NoError(t, err)

	require.Len(t, result.Chunks, 12)
	for i, c := range result.Chunks {
		assert.Equal(t, fmt.Sprintf("content %02d", i), c.Content())
	}
	require.Len(t, calls, 12)
	for i, c := range calls {
		assert.Equal(t, i, c.index)
		assert.Equal(t, 12, c.total)
	}
}

func TestIngestService_LoadAndSplit_PipelineError(t *testing.T) {
	loader := &mockDispatcher{records: map[string][]domain.Record{"/in/a.pdf": {docRecord("/in/a.pdf", "x")}}}
	svc := NewIngestService(loader, &mockPipeline{err: errors.New("bad splitter")}, nil, 1)

	_, err := svc.LoadAndSplit(context.Background(), []string{"/in/a.pdf"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad splitter")
}

func TestIngestService_LoadAndSplit_Cancelled(t *testing.T) {
	loader := &mockDispatcher{block: make(chan struct{})}
	svc := NewIngestService(loader, nil, nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.LoadAndSplit(ctx, []string{"/in/a.pdf"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Chunks)
	assert.Zero(t, result.Total)
}

// cancellingDispatcher cancels the batch once the first file has loaded.
type cancellingDispatcher struct {
	mockDispatcher
	cancel context.CancelFunc
}

func (c *cancellingDispatcher) Load(ctx context.Context, path string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := c.mockDispatcher.Load(ctx, path)
	c.cancel()
	return records, err
}

func TestIngestService_LoadAndSplit_CancelledKeepsFinishedFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loader := &cancellingDispatcher{
		mockDispatcher: mockDispatcher{records: map[string][]domain.Record{
			"/in/a.pdf": {docRecord("/in/a.pdf", "first")},
			"/in/b.pdf": {docRecord("/in/b.pdf", "second")},
			"/in/c.pdf": {docRecord("/in/c.pdf", "third")},
		}},
		cancel: cancel,
	}
	pipeline := &mockPipeline{}
	svc := NewIngestService(loader, pipeline, nil, 1)

	result, err := svc.LoadAndSplit(ctx, []string{"/in/a.pdf", "/in/b.pdf", "/in/c.pdf"}, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	assert.False(t, result.OK())
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "first [split]", result.Chunks[0].Content())
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Succeeded())
	assert.Empty(t, result.Failed, "interrupted files are not reported as failures")
	assert.Equal(t, fmt.Sprintf(domain.MessageCancelled, 1, 3), result.Message)
	assert.Equal(t, []string{"/in/a.pdf"}, loader.loaded)
}

func TestIngestService_LoadAndSplit_CancelledKeepsIgnoredAndFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loader := &cancellingDispatcher{
		mockDispatcher: mockDispatcher{errs: map[string]error{
			"/in/bad.pdf": fmt.Errorf("%w: encrypted", domain.ErrLoadFailure),
		}},
		cancel: cancel,
	}
	svc := NewIngestService(loader, nil, nil, 1)

	result, err := svc.LoadAndSplit(ctx, []string{"/in/notes.txt", "/in/bad.pdf", "/in/c.pdf"}, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	assert.Equal(t, []string{"notes.txt"}, result.Ignored)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bad.pdf", result.Failed[0].Filename)
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 2, result.Total)
}

func TestIngestService_Ingest_CancelledIsNotIndexed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loader := &cancellingDispatcher{
		mockDispatcher: mockDispatcher{records: map[string][]domain.Record{
			"/in/a.pdf": {docRecord("/in/a.pdf", "first")},
		}},
		cancel: cancel,
	}
	index := &mockIndexer{}
	svc := NewIngestService(loader, nil, index, 1)

	result, err := svc.Ingest(ctx, []string{"/in/a.pdf", "/in/b.pdf"}, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Len(t, result.Chunks, 1)
	assert.Zero(t, result.Indexed)
	assert.Empty(t, index.added)
}

func TestIngestService_Ingest_IndexesChunks(t *testing.T) {
	loader := &mockDispatcher{records: map[string][]domain.Record{"/in/a.pdf": {docRecord("/in/a.pdf", "x")}}}
	index := &mockIndexer{}
	svc := NewIngestService(loader, &mockPipeline{}, index, 1)

	result, err := svc.Ingest(context.Background(), []string{"/in/a.pdf"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)
	require.Len(t, index.added, 1)
	assert.Equal(t, "x [split]", index.added[0].Content())
}

func TestIngestService_Ingest_SkipsIndexWhenNothingLoaded(t *testing.T) {
	index := &mockIndexer{}
	svc := NewIngestService(&mockDispatcher{}, nil, index, 1)

	result, err := svc.Ingest(context.Background(), []string{"/in/a.txt"}, nil)
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Empty(t, index.added)
}

func TestIngestService_Ingest_IndexFailure(t *testing.T) {
	loader := &mockDispatcher{records: map[string][]domain.Record{"/in/a.pdf": {docRecord("/in/a.pdf", "x")}}}
	index := &mockIndexer{err: fmt.Errorf("%w: embed failed", domain.ErrIndexWrite)}
	svc := NewIngestService(loader, nil, index, 1)

	result, err := svc.Ingest(context.Background(), []string{"/in/a.pdf"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexWrite)
	require.NotNil(t, result)
	assert.Zero(t, result.Indexed)
	assert.Len(t, result.Chunks, 1)
}

func TestIngestService_Ingest_WithIndexService(t *testing.T) {
	loader := &mockDispatcher{records: map[string][]domain.Record{
		"/in/a.pdf": {docRecord("/in/a.pdf", "alpha"), docRecord("/in/a.pdf", "beta")},
	}}
	index, store := newTestIndex(t, &mockEmbedder{})
	svc := NewIngestService(loader, nil, index, 2)

	result, err := svc.Ingest(context.Background(), []string{"/in/a.pdf"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Indexed)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
