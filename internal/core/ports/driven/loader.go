package driven

import (
	"context"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// Loader extracts records from files of the formats it declares.
type Loader interface {
	// Formats returns the formats this loader handles.
	Formats() []domain.Format

	// Load reads the file at path and returns its records.
	// Every record's source metadata equals path.
	Load(ctx context.Context, path string) ([]domain.Record, error)
}

// CommandRunner runs an external program and returns its standard output.
// Loaders that shell out (pdftotext, soffice) take one so tests can fake it.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Dispatcher routes a file to the loader for its format.
// Files outside the allow-list fail with domain.ErrUnsupportedFormat.
type Dispatcher interface {
	Load(ctx context.Context, path string) ([]domain.Record, error)
}
