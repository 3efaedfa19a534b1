package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// RequestsPerSecond throttles embedding calls. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
// The same shape configures the text model and the vision model.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Timeout bounds a single generation call. Zero uses the adapter default.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexBackend selects the vector store implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores vectors in a sqlite database under the index dir.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps vectors in process memory only.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendWeaviate stores vectors in a Weaviate class.
	IndexBackendWeaviate IndexBackend = "weaviate"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendMemory, IndexBackendWeaviate:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend is the vector store implementation.
	Backend IndexBackend

	// Dir is the index root. Each collection gets a subdirectory.
	Dir string

	// Collection is the collection name.
	Collection string

	// Dedupe makes entry IDs content-addressed so re-ingesting identical
	// chunks does not duplicate them.
	Dedupe bool

	// WeaviateHost is host:port of the Weaviate server.
	WeaviateHost string

	// WeaviateScheme is http or https.
	WeaviateScheme string
}

// RetrievalSettings holds answer pipeline configuration.
type RetrievalSettings struct {
	// K is the number of chunks retrieved per question.
	K int
}

// IngestSettings holds ingestion configuration.
type IngestSettings struct {
	// TableChunkSize is the number of rows per table chunk record.
	TableChunkSize int

	// Workers is the number of files loaded concurrently.
	Workers int
}

// LoaderSettings holds format loader configuration.
type LoaderSettings struct {
	// PDFBoilerplate lists markers; PDF lines containing any of them are dropped.
	PDFBoilerplate []string

	// PdftotextPath is the pdftotext binary.
	PdftotextPath string

	// SofficePath is the LibreOffice binary used to convert legacy .ppt files.
	SofficePath string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds the text generation provider settings.
	LLM LLMSettings

	// Vision holds the image captioning provider settings.
	Vision LLMSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Retrieval holds answer pipeline settings.
	Retrieval RetrievalSettings

	// Ingest holds ingestion settings.
	Ingest IngestSettings

	// Loaders holds format loader settings.
	Loaders LoaderSettings

	// Pipeline holds chunking pipeline settings.
	Pipeline PipelineConfig

	// QueryLogPath is where answered questions are logged. Empty disables it.
	QueryLogPath string
}

// Defaults for the knowledge base.
const (
	DefaultCollection     = "local_knowledge_base"
	DefaultRetrievalK     = 4
	DefaultTableChunkSize = 50
	DefaultOllamaURL      = "http://localhost:11434"
)

// DefaultPDFBoilerplate is the built-in PDF line denylist.
var DefaultPDFBoilerplate = []string{"BPGP 2024-26 Batch"}

// DefaultAppSettings returns settings with sensible defaults.
// Everything runs against a local Ollama out of the box.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  DefaultOllamaURL,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    "llama3.2:1b",
			BaseURL:  DefaultOllamaURL,
		},
		Vision: LLMSettings{
			Provider: AIProviderOllama,
			Model:    "llava:7b",
			BaseURL:  DefaultOllamaURL,
		},
		Index: IndexSettings{
			Backend:        IndexBackendSQLite,
			Collection:     DefaultCollection,
			Dedupe:         true,
			WeaviateHost:   "localhost:8080",
			WeaviateScheme: "http",
		},
		Retrieval: RetrievalSettings{K: DefaultRetrievalK},
		Ingest: IngestSettings{
			TableChunkSize: DefaultTableChunkSize,
			Workers:        1,
		},
		Loaders: LoaderSettings{
			PDFBoilerplate: append([]string(nil), DefaultPDFBoilerplate...),
			PdftotextPath:  "pdftotext",
			SofficePath:    "soffice",
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support text generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default text models for each provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2:1b",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// DefaultVisionModels returns default image-capable models for each provider.
func DefaultVisionModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llava:7b",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"splitter"},
		ProcessorConfigs: map[string]map[string]any{
			"splitter": {
				"chunk_size": 1000,
				"overlap":    200,
			},
		},
	}
}
