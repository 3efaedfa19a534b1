// Package watch ingests files as they appear or change in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a directory to go
// quiet before ingesting what changed.
const DefaultDebounce = 2 * time.Second

// ErrNotDirectory is returned when the watched path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// ResultFunc receives the outcome of every batch the watcher ingests.
type ResultFunc func(paths []string, result *domain.IngestionResult, err error)

// Watcher batches create and write events for allow-listed files and
// hands each batch to an IngestService.
type Watcher struct {
	dir       string
	ingest    driving.IngestService
	debounce  time.Duration
	recursive bool
	onResult  ResultFunc
	listener  driving.ProgressListener
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRecursive also watches subdirectories, including ones created later.
func WithRecursive(recursive bool) Option {
	return func(w *Watcher) { w.recursive = recursive }
}

// WithResultFunc reports each ingested batch.
func WithResultFunc(fn ResultFunc) Option {
	return func(w *Watcher) { w.onResult = fn }
}

// WithProgress passes listener to every ingestion.
func WithProgress(listener driving.ProgressListener) Option {
	return func(w *Watcher) { w.listener = listener }
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		ingest:   ingest,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. Changes still waiting for the
// debounce period when ctx ends are dropped.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: %w", w.dir, ErrNotDirectory)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addDirs(fw, w.dir); err != nil {
		return err
	}
	logger.Info("Watching %s (recursive=%t, debounce=%s)", w.dir, w.recursive, w.debounce)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.recursive && event.Has(fsnotify.Create) && isDir(event.Name) && !isHidden(event.Name) {
				if err := w.addDirs(fw, event.Name); err != nil {
					logger.Warn("watch %s: %v", event.Name, err)
				}
				continue
			}
			if path, ok := w.handleEvent(event); ok {
				logger.Debug("Changed: %s", path)
				pending[path] = struct{}{}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			w.flush(ctx, pending)
			clear(pending)
		}
	}
}

// handleEvent returns the path to ingest for event, if any.
// Only creates and writes of allow-listed, non-hidden regular files count.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(event.Name) || !domain.IsSupportedPath(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	logger.Info("Ingesting %d changed files", len(paths))
	result, err := w.ingest.Ingest(ctx, paths, w.listener)
	if err != nil {
		logger.Warn("ingest failed: %v", err)
	}
	if w.onResult != nil {
		w.onResult(paths, result, err)
	}
}

func (w *Watcher) addDirs(fw *fsnotify.Watcher, root string) error {
	if !w.recursive {
		if err := fw.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
