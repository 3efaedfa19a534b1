package driving

import (
	"context"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// ProgressListener observes a batch ingestion.
//
// OnFile is called exactly once per input path, with index strictly
// increasing from 0, before that file is checked or loaded.
type ProgressListener interface {
	OnFile(index, total int, filename string)
}

// ProgressFunc adapts a function to ProgressListener.
type ProgressFunc func(index, total int, filename string)

// OnFile implements ProgressListener.
func (f ProgressFunc) OnFile(index, total int, filename string) {
	f(index, total, filename)
}

// IngestService turns files into indexed chunks.
type IngestService interface {
	// LoadAndSplit loads and chunks the files without indexing them.
	// listener may be nil. On cancellation the files that finished are
	// returned together with the context error.
	LoadAndSplit(ctx context.Context, paths []string, listener ProgressListener) (*domain.IngestionResult, error)

	// Ingest loads, chunks and indexes the files.
	// Per-file failures are collected in the result; only an index write
	// failure or cancellation is returned as an error.
	Ingest(ctx context.Context, paths []string, listener ProgressListener) (*domain.IngestionResult, error)
}
