package images

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader wraps a Processor as a driven.Loader. Images never fail a batch:
// undecodable files become the filename/location record.
type Loader struct {
	processor *Processor
}

// NewLoader creates an image loader.
func NewLoader(p *Processor) *Loader {
	return &Loader{processor: p}
}

// Formats returns the formats this loader handles.
func (l *Loader) Formats() []domain.Format {
	return []domain.Format{domain.FormatImage}
}

// Load returns exactly one record for the image at path.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Record, error) {
	rec, err := l.processor.Process(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrImageLoad) {
			return nil, err
		}
		logger.Warn("could not decode %s, creating basic record: %v", filepath.Base(path), err)
		rec = NewRecord(path, "")
	}
	return []domain.Record{rec}, nil
}
