// Package domain defines the core business entities for ScholarSync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A unit of extracted text with provenance metadata
//   - Format: The closed set of file formats the loaders understand
//   - IndexedEntry: A chunk plus its embedding, as stored in the index
//   - IngestionResult: The outcome of one batch ingestion
//   - Answer: A generated answer with its cited sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
