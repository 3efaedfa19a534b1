package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector store is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrConfigNotFound indicates an unknown settings key.
	ErrConfigNotFound = errors.New("config key not found")

	// ErrMissingRequired indicates a setting needed by the configured providers is empty.
	ErrMissingRequired = errors.New("missing required setting")

	// Pipeline Errors.

	// ErrUnsupportedFormat indicates a file extension outside the allow-list.
	// Ingestion records such files as ignored rather than failing.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrLoadFailure indicates a loader failed on a recognised format.
	ErrLoadFailure = errors.New("load failure")

	// ErrTableLoad indicates a spreadsheet or CSV could not be turned into a table.
	ErrTableLoad = errors.New("table load error")

	// ErrImageLoad indicates an image could not be opened or decoded.
	ErrImageLoad = errors.New("image load error")

	// ErrRetrieval indicates the similarity search for a question failed.
	ErrRetrieval = errors.New("retrieval error")

	// ErrAnswerGeneration indicates the language model call for an answer failed.
	ErrAnswerGeneration = errors.New("answer generation error")

	// ErrIndexWrite indicates chunks could not be embedded or persisted.
	// Nothing from the failed call is kept.
	ErrIndexWrite = errors.New("index write error")
)
