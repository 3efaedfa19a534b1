package tabular

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// LoaderChunkSize is the rows-per-chunk used when loading tables for ingestion.
const LoaderChunkSize = 50

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader loads CSV and XLSX files through the Processor. When structured
// processing fails it falls back to a single raw-text document record.
type Loader struct {
	processor *Processor
	chunkSize int
}

// Option configures a Loader.
type Option func(*Loader)

// WithChunkSize sets the rows per chunk. Non-positive values are ignored.
func WithChunkSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.chunkSize = n
		}
	}
}

// NewLoader creates a table loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{processor: NewProcessor(), chunkSize: LoaderChunkSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Formats returns the formats this loader handles.
func (l *Loader) Formats() []domain.Format {
	return []domain.Format{domain.FormatCSV, domain.FormatXLSX}
}

// Load returns the summary and chunk records for the table at path.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Record, error) {
	records, err := l.processor.Process(ctx, path, l.chunkSize)
	if err == nil {
		return records, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logger.Warn("tabular processing failed for %s, falling back to raw text: %v", filepath.Base(path), err)
	text, ferr := rawText(path)
	if ferr != nil {
		return nil, fmt.Errorf("%w; fallback: %w", err, ferr)
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("%s has no content, nothing to ingest", filepath.Base(path))
		return nil, nil
	}
	return []domain.Record{domain.NewSourceRecord(path, domain.RecordTypeDocument, text)}, nil
}

// rawText reads a table as plain text: CSV verbatim, XLSX sheets as
// tab-separated rows.
func rawText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
