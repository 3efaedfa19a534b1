// Package querylog writes answered questions as JSON lines.
package querylog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// Ensure Logger implements the interface.
var _ driven.QueryLogger = (*Logger)(nil)

// Logger appends one JSON object per answered question.
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
	closer io.Closer
	now    func() time.Time
}

// New creates a logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{writer: w, now: time.Now}
}

// Open creates a logger appending to the file at path, creating parent directories.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create query log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open query log: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

// Log stamps the entry and writes it. Write failures are logged, not returned.
func (l *Logger) Log(entry driven.QueryLogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	entry.LatencyMs = entry.Duration.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.writer).Encode(entry); err != nil {
		logger.Warn("failed to write query log entry: %v", err)
	}
}

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
