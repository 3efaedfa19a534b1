package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/storage/memory"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil))

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, domain.DefaultOllamaURL, settings.Embedding.BaseURL)
	assert.Equal(t, "llama3.2:1b", settings.LLM.Model)
	assert.Equal(t, "llava:7b", settings.Vision.Model)
	assert.Equal(t, domain.IndexBackendSQLite, settings.Index.Backend)
	assert.Equal(t, domain.DefaultCollection, settings.Index.Collection)
	assert.True(t, settings.Index.Dedupe)
	assert.Equal(t, 4, settings.Retrieval.K)
	assert.Equal(t, 50, settings.Ingest.TableChunkSize)
	assert.Equal(t, 1, settings.Ingest.Workers)
	assert.Equal(t, []string{"BPGP 2024-26 Batch"}, settings.Loaders.PDFBoilerplate)
	assert.Equal(t, []string{"splitter"}, settings.Pipeline.Processors)
	assert.Empty(t, settings.QueryLogPath)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":      "openai",
		"embedding.api_key":       "sk-embed",
		"llm.provider":            "anthropic",
		"llm.api_key":             "sk-ant",
		"vision.timeout":          "45s",
		"index.backend":           "weaviate",
		"index.dedupe":            false,
		"retrieval.k":             int64(6),
		"ingest.workers":          int64(3),
		"loaders.pdf.boilerplate": []any{"CONFIDENTIAL"},
		"querylog.path":           "/tmp/q.jsonl",
	})
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Equal(t, 45*time.Second, settings.Vision.Timeout)
	assert.Equal(t, domain.IndexBackendWeaviate, settings.Index.Backend)
	assert.False(t, settings.Index.Dedupe)
	assert.Equal(t, 6, settings.Retrieval.K)
	assert.Equal(t, 3, settings.Ingest.Workers)
	assert.Equal(t, []string{"CONFIDENTIAL"}, settings.Loaders.PDFBoilerplate)
	assert.Equal(t, "/tmp/q.jsonl", settings.QueryLogPath)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider": "invalid_provider",
		"index.backend":      "postgres",
		"retrieval.k":        int64(-2),
		"vision.timeout":     "soon",
	})
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, domain.IndexBackendSQLite, settings.Index.Backend)
	assert.Equal(t, 4, settings.Retrieval.K)
	assert.Zero(t, settings.Vision.Timeout)
}

func TestSettingsService_Save_RoundTrip(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o", APIKey: "sk"}
	settings.Index.Collection = "papers"
	settings.Retrieval.K = 8
	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, got.LLM.Provider)
	assert.Equal(t, "gpt-4o", got.LLM.Model)
	assert.Equal(t, "sk", got.LLM.APIKey)
	assert.Equal(t, "papers", got.Index.Collection)
	assert.Equal(t, 8, got.Retrieval.K)

	_, hasEmbedKey := store.Get("embedding.api_key")
	assert.False(t, hasEmbedKey, "empty api keys are not written")
	_, hasDir := store.Get("index.dir")
	assert.False(t, hasDir)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{"int", "retrieval.k", "7", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 7, s.Retrieval.K)
		}},
		{"bool", "index.dedupe", "false", func(t *testing.T, s *domain.AppSettings) {
			assert.False(t, s.Index.Dedupe)
		}},
		{"float", "embedding.requests_per_second", "2.5", func(t *testing.T, s *domain.AppSettings) {
			assert.InDelta(t, 2.5, s.Embedding.RequestsPerSecond, 1e-9)
		}},
		{"duration", "vision.timeout", "1m", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, time.Minute, s.Vision.Timeout)
		}},
		{"list", "loaders.pdf.boilerplate", "Draft, Internal ,", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, []string{"Draft", "Internal"}, s.Loaders.PDFBoilerplate)
		}},
		{"backend", "index.backend", "memory", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.IndexBackendMemory, s.Index.Backend)
		}},
		{"pipeline", "pipeline.splitter.chunk_size", "500", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 500, s.Pipeline.GetProcessorConfig("splitter")["chunk_size"])
			assert.Equal(t, 200, s.Pipeline.GetProcessorConfig("splitter")["overlap"])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(nil))

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil))

	assert.ErrorIs(t, service.Set("search.mode", "hybrid"), domain.ErrConfigNotFound)
	assert.ErrorIs(t, service.Set("retrieval.k", "four"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("retrieval.k", "0"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("index.dedupe", "maybe"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("vision.timeout", "later"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("embedding.provider", "anthropic"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("llm.provider", "cohere"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("index.backend", "postgres"), domain.ErrInvalidInput)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil))

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderGemini, "", "g-key"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderGemini, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-004", settings.Embedding.Model)
	assert.Equal(t, "g-key", settings.Embedding.APIKey)
	assert.Empty(t, settings.Embedding.BaseURL)
}

func TestSettingsService_SetEmbeddingProvider_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil))

	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "k"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), domain.ErrMissingRequired)
}

func TestSettingsService_SetLLMAndVisionProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil))

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "claude-x", "a-key"))
	require.NoError(t, service.SetVisionProvider(domain.AIProviderOpenAI, "", "o-key"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "claude-x", settings.LLM.Model)
	assert.Equal(t, "a-key", settings.LLM.APIKey)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Vision.Provider)
	assert.Equal(t, domain.DefaultVisionModels()[domain.AIProviderOpenAI], settings.Vision.Model)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultOllamaURL, settings.LLM.BaseURL)

	assert.ErrorIs(t, service.SetLLMProvider("cohere", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetVisionProvider(domain.AIProviderGemini, "", ""), domain.ErrMissingRequired)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
	}{
		{"defaults", nil, nil},
		{"cloud embedding without key", map[string]any{"embedding.provider": "openai"}, domain.ErrMissingRequired},
		{"cloud llm without key", map[string]any{"llm.provider": "anthropic"}, domain.ErrMissingRequired},
		{"cloud llm with key", map[string]any{"llm.provider": "anthropic", "llm.api_key": "k"}, nil},
		{"weaviate with default host", map[string]any{"index.backend": "weaviate", "index.weaviate.host": ""}, nil},
		{"vision misconfigured is tolerated", map[string]any{"vision.provider": "openai"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(tt.values))

			err := service.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSettingsService_GetPipelineConfig(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"pipeline.processors":          []any{"splitter"},
		"pipeline.splitter.overlap":    int64(50),
		"pipeline.splitter.separators": []any{"\n\n", " "},
	})
	service := NewSettingsService(store)

	cfg := service.GetPipelineConfig()

	splitter := cfg.GetProcessorConfig("splitter")
	assert.Equal(t, 1000, splitter["chunk_size"])
	assert.Equal(t, int64(50), splitter["overlap"])
	assert.Equal(t, []any{"\n\n", " "}, splitter["separators"])
	assert.Equal(t, 200, domain.DefaultPipelineConfig().GetProcessorConfig("splitter")["overlap"])
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil))
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
