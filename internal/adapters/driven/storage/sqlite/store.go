package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/storage/similarity"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const dbFile = "vectors.db"

// Config locates a collection on disk.
type Config struct {
	// Dir is the index root. Defaults to ~/.scholarsync/index.
	Dir string

	// Collection names the collection. Defaults to domain.DefaultCollection.
	Collection string
}

// Store is a sqlite-backed driven.VectorStore for a single collection.
// The database is opened lazily so reads against a missing collection
// never create files.
type Store struct {
	mu         sync.Mutex
	db         *sql.DB
	dir        string
	collection string
}

// NewStore creates a store for cfg. No I/O happens until first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.Dir = filepath.Join(home, ".scholarsync", "index")
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if strings.ContainsAny(cfg.Collection, `/\`) || cfg.Collection == "." || cfg.Collection == ".." {
		return nil, fmt.Errorf("%w: collection name %q", domain.ErrInvalidInput, cfg.Collection)
	}

	return &Store{
		dir:        filepath.Join(cfg.Dir, cfg.Collection),
		collection: cfg.Collection,
	}, nil
}

// Name returns the backend name.
func (s *Store) Name() string { return "sqlite" }

// Dir returns the collection directory.
func (s *Store) Dir() string { return s.dir }

// Collection returns the collection name.
func (s *Store) Collection() string { return s.collection }

// EnsureCollection creates the collection directory and schema if absent.
func (s *Store) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.open(ctx, true)
	return err
}

// Add inserts entries in a single transaction and returns the number of new
// rows. Existing IDs are left unchanged.
func (s *Store) Add(ctx context.Context, entries []domain.IndexedEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open(ctx, true)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, content, metadata, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		if e.ID == "" {
			return 0, fmt.Errorf("%w: entry without id", domain.ErrInvalidInput)
		}
		metadataJSON, err := json.Marshal(e.Record.Metadata())
		if err != nil {
			return 0, fmt.Errorf("marshalling metadata: %w", err)
		}
		res, err := stmt.ExecContext(ctx, e.ID, e.Record.Content(),
			string(metadataJSON), float32SliceToBytes(e.Embedding))
		if err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting inserted rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing entries: %w", err)
	}
	return inserted, nil
}

// Search ranks every stored entry against query by cosine similarity.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open(ctx, false)
	if err != nil {
		return nil, err
	}
	if db == nil || k <= 0 {
		return []domain.ScoredRecord{}, nil
	}

	rows, err := db.QueryContext(ctx, `SELECT content, metadata, embedding FROM entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var candidates []similarity.Candidate
	for rows.Next() {
		var content, metadataJSON string
		var blob []byte
		if err := rows.Scan(&content, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
		candidates = append(candidates, similarity.Candidate{
			Record:    domain.NewRecord(content, metadata),
			Embedding: bytesToFloat32Slice(blob),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return similarity.TopK(candidates, query, k)
}

// Count returns the number of stored entries, 0 for a missing collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open(ctx, false)
	if err != nil || db == nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Drop closes the database and removes the collection directory.
func (s *Store) Drop(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return false, fmt.Errorf("closing database: %w", err)
		}
		s.db = nil
	}

	_, err := os.Stat(s.dir)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking collection directory: %w", err)
	}

	if err := os.RemoveAll(s.dir); err != nil {
		return existed, fmt.Errorf("removing collection directory: %w", err)
	}
	return existed, nil
}

// Close closes the database connection if open.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// open returns the database, opening it if needed (caller must hold lock).
// Without create, a missing database yields (nil, nil).
func (s *Store) open(ctx context.Context, create bool) (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}

	dbPath := filepath.Join(s.dir, dbFile)
	if !create {
		if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating collection directory: %w", err)
	}

	// WAL mode for concurrent readers
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(ctx, db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collection_info (key, value) VALUES ('name', ?)`, s.collection); err != nil {
		db.Close()
		return nil, fmt.Errorf("recording collection name: %w", err)
	}

	s.db = db
	return db, nil
}

// migrate runs all pending up migrations in version order.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_entries.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
