package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.Dispatcher = (*Registry)(nil)

// Registry maps formats to loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[domain.Format]driven.Loader
}

// NewRegistry creates a registry holding the given loaders.
func NewRegistry(loaders ...driven.Loader) (*Registry, error) {
	r := &Registry{loaders: make(map[domain.Format]driven.Loader)}
	for _, l := range loaders {
		if err := r.Register(l); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a loader for each of its formats.
// A format can only be claimed once.
func (r *Registry) Register(l driven.Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range l.Formats() {
		if f == domain.FormatUnknown {
			return fmt.Errorf("register loader: %w: unknown format", domain.ErrInvalidInput)
		}
		if _, exists := r.loaders[f]; exists {
			return fmt.Errorf("register loader: format %s already registered", f)
		}
		r.loaders[f] = l
	}
	return nil
}

// LoaderFor returns the loader registered for a format.
func (r *Registry) LoaderFor(f domain.Format) (driven.Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[f]
	return l, ok
}

// Missing returns the supported formats that have no loader registered.
func (r *Registry) Missing() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []domain.Format
	for _, f := range domain.AllFormats() {
		if _, ok := r.loaders[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Load dispatches path to the loader for its extension.
// Paths outside the allow-list fail with domain.ErrUnsupportedFormat.
func (r *Registry) Load(ctx context.Context, path string) ([]domain.Record, error) {
	f, ok := domain.FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}

	l, ok := r.LoaderFor(f)
	if !ok {
		return nil, fmt.Errorf("%w: no loader for %s", domain.ErrUnsupportedFormat, f)
	}
	return l.Load(ctx, path)
}
