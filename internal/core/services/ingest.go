package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// ChunkIndexer stores chunks and returns how many were written.
type ChunkIndexer interface {
	Add(ctx context.Context, chunks []domain.Record) (int, error)
}

// IngestService loads files, splits them and hands the chunks to the index.
type IngestService struct {
	loader   driven.Dispatcher
	pipeline driven.PostProcessorPipeline
	index    ChunkIndexer
	workers  int
}

// NewIngestService creates an ingest service. pipeline may be nil to skip
// splitting; index may be nil for load-only use. workers < 1 means 1.
func NewIngestService(
	loader driven.Dispatcher,
	pipeline driven.PostProcessorPipeline,
	index ChunkIndexer,
	workers int,
) *IngestService {
	return &IngestService{
		loader:   loader,
		pipeline: pipeline,
		index:    index,
		workers:  max(workers, 1),
	}
}

// fileOutcome is what happened to one input path. done is false for
// paths the batch never finished because the context was cancelled.
type fileOutcome struct {
	records []domain.Record
	err     error
	ignored bool
	done    bool
}

// LoadAndSplit loads every path and splits the resulting records. Paths are
// made absolute first so record sources do not depend on how the file was
// named on the command line. If ctx is
// cancelled mid-batch, the files that finished are still split and returned
// together with the context error.
func (s *IngestService) LoadAndSplit(
	ctx context.Context, paths []string, listener driving.ProgressListener,
) (*domain.IngestionResult, error) {
	logger.Section("Ingest")
	logger.Debug("Files: %d, workers: %d", len(paths), s.workers)
	defer logger.Since("Loading", time.Now())

	paths = absPaths(paths)
	outcomes := make([]fileOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			break
		}
		if listener != nil {
			listener.OnFile(i, len(paths), filepath.Base(path))
		}

		if !domain.IsSupportedPath(path) {
			logger.Debug("Ignoring %s: unsupported extension", path)
			outcomes[i] = fileOutcome{ignored: true, done: true}
			continue
		}

		// Blocks while all workers are busy, so listener calls stay ordered.
		g.Go(func() error {
			logger.Debug("Loading %s", path)
			records, err := s.loader.Load(gctx, path)
			if err != nil && gctx.Err() != nil {
				logger.Debug("Interrupted loading %s: %v", path, err)
				return nil
			}
			if err != nil {
				logger.Debug("Failed to load %s: %v", path, err)
			}
			outcomes[i] = fileOutcome{records: records, err: err, done: true}
			return nil
		})
	}
	_ = g.Wait()

	cancelErr := ctx.Err()

	result := &domain.IngestionResult{
		Total:   len(paths),
		Chunks:  []domain.Record{},
		Failed:  []domain.FailedFile{},
		Ignored: []string{},
	}

	var records []domain.Record
	finished := 0
	for i, o := range outcomes {
		if !o.done {
			continue
		}
		finished++
		name := filepath.Base(paths[i])
		switch {
		case o.ignored:
			result.Ignored = append(result.Ignored, name)
		case o.err != nil:
			result.Failed = append(result.Failed, domain.FailedFile{Filename: name, Message: o.err.Error()})
		default:
			records = append(records, o.records...)
		}
	}

	if cancelErr != nil {
		return s.partial(ctx, result, records, finished), cancelErr
	}

	if len(records) == 0 {
		result.Status = domain.IngestionError
		result.Message = domain.MessageNoDocuments
		logger.Info("%s", result.Message)
		return result, nil
	}

	chunks := records
	if s.pipeline != nil {
		var err error
		chunks, err = s.pipeline.Process(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("split records: %w", err)
		}
	}

	result.Chunks = chunks
	result.Status = domain.IngestionSuccess
	result.Message = result.SuccessMessage()
	logger.Info("Loaded %d records into %d chunks (%d failed, %d ignored)",
		len(records), len(chunks), len(result.Failed), len(result.Ignored))
	return result, nil
}

func absPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = domain.AbsPath(p)
	}
	return out
}

// partial finishes a cancelled batch. Total shrinks to the files that
// finished so Succeeded stays consistent; the status is always error.
func (s *IngestService) partial(
	ctx context.Context, result *domain.IngestionResult, records []domain.Record, finished int,
) *domain.IngestionResult {
	requested := result.Total
	result.Total = finished
	result.Status = domain.IngestionError
	result.Message = fmt.Sprintf(domain.MessageCancelled, finished, requested)

	if len(records) > 0 && s.pipeline != nil {
		// Splitting is local work; finish it for what was already loaded.
		chunks, err := s.pipeline.Process(context.WithoutCancel(ctx), records)
		if err != nil {
			logger.Warn("Could not split records of cancelled batch: %v", err)
			chunks = nil
		}
		records = chunks
	}
	if records != nil {
		result.Chunks = records
	}
	logger.Warn("%s", result.Message)
	return result
}

// Ingest loads, splits and indexes the files. An index write failure or a
// cancellation is returned together with the load result; a cancelled
// batch is never indexed.
func (s *IngestService) Ingest(
	ctx context.Context, paths []string, listener driving.ProgressListener,
) (*domain.IngestionResult, error) {
	result, err := s.LoadAndSplit(ctx, paths, listener)
	if err != nil {
		return result, err
	}
	if !result.OK() || s.index == nil {
		return result, nil
	}

	n, err := s.index.Add(ctx, result.Chunks)
	if err != nil {
		return result, err
	}
	result.Indexed = n
	return result, nil
}
