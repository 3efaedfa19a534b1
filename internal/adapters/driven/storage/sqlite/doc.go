// Package sqlite provides the default on-disk vector store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each collection is a database file in
// its own directory:
//
//	<dir>/<collection>/vectors.db
//
// Embeddings are stored as little-endian float32 blobs and ranked by brute-force
// cosine similarity at query time.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each up migration records its version in schema_migrations.
//
// # Thread Safety
//
// All operations are thread-safe. The store serialises opening and dropping the
// database; SQLite in WAL mode handles concurrent reads.
package sqlite
