// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Loader: Extracts records from one file format
//   - EmbeddingService: Generates vector embeddings for chunks and questions
//   - LLMService: Text generation, with optional image inputs for captioning
//   - VectorStore: Persists and searches embedded chunks in a named collection
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PromptStore: User-editable prompt templates. Built-in defaults are used without it.
//   - QueryLogger: Records answered questions.
//   - CommandRunner: Runs external extraction tools. Defaults to os/exec.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
