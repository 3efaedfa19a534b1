package driven

import (
	"context"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// PostProcessor transforms loaded records before indexing.
// PostProcessors are chained in a pipeline (e.g., splitting, filtering).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes records and returns the transformed records, preserving order.
	Process(ctx context.Context, records []domain.Record) ([]domain.Record, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the records through all processors in order.
	Process(ctx context.Context, records []domain.Record) ([]domain.Record, error)
}
