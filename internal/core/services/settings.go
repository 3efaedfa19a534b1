package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedRPS      = "embedding.requests_per_second"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"
	keyLLMTimeout  = "llm.timeout"

	keyVisionProvider = "vision.provider"
	keyVisionModel    = "vision.model"
	keyVisionBaseURL  = "vision.base_url"
	keyVisionAPIKey   = "vision.api_key"
	keyVisionTimeout  = "vision.timeout"

	keyIndexBackend    = "index.backend"
	keyIndexDir        = "index.dir"
	keyIndexCollection = "index.collection"
	keyIndexDedupe     = "index.dedupe"
	keyWeaviateHost    = "index.weaviate.host"
	keyWeaviateScheme  = "index.weaviate.scheme"

	keyRetrievalK     = "retrieval.k"
	keyTableChunkSize = "ingest.table_chunk_size"
	keyIngestWorkers  = "ingest.workers"

	keyPDFBoilerplate = "loaders.pdf.boilerplate"
	keyPdftotext      = "loaders.pdf.pdftotext"
	keySoffice        = "loaders.ppt.soffice"

	keyQueryLogPath = "querylog.path"

	keyPipelineProcessors = "pipeline.processors"
)

// settingKind is how a settings key is parsed by Set.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

// settableKeys lists every key accepted by Set.
var settableKeys = map[string]settingKind{
	keyEmbedProvider: kindString, keyEmbedModel: kindString, keyEmbedBaseURL: kindString,
	keyEmbedAPIKey: kindString, keyEmbedRPS: kindFloat,
	keyLLMProvider: kindString, keyLLMModel: kindString, keyLLMBaseURL: kindString,
	keyLLMAPIKey: kindString, keyLLMTimeout: kindDuration,
	keyVisionProvider: kindString, keyVisionModel: kindString, keyVisionBaseURL: kindString,
	keyVisionAPIKey: kindString, keyVisionTimeout: kindDuration,
	keyIndexBackend: kindString, keyIndexDir: kindString, keyIndexCollection: kindString,
	keyIndexDedupe: kindBool, keyWeaviateHost: kindString, keyWeaviateScheme: kindString,
	keyRetrievalK: kindInt, keyTableChunkSize: kindInt, keyIngestWorkers: kindInt,
	keyPDFBoilerplate: kindList, keyPdftotext: kindString, keySoffice: kindString,
	keyQueryLogPath:                kindString,
	keyPipelineProcessors:          kindList,
	"pipeline.splitter.chunk_size": kindInt,
	"pipeline.splitter.overlap":    kindInt,
	"pipeline.splitter.separators": kindList,
}

// SettingsService resolves application settings from defaults and a
// ConfigStore. Environment overrides are applied by the store itself.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, ""),
			BaseURL:           s.getString(keyEmbedBaseURL, ""),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM:    s.getLLM(keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMTimeout, d.LLM),
		Vision: s.getLLM(keyVisionProvider, keyVisionModel, keyVisionBaseURL, keyVisionAPIKey, keyVisionTimeout, d.Vision),
		Index: domain.IndexSettings{
			Backend:        s.getBackend(d.Index.Backend),
			Dir:            s.getString(keyIndexDir, d.Index.Dir),
			Collection:     s.getString(keyIndexCollection, d.Index.Collection),
			Dedupe:         s.getBool(keyIndexDedupe, d.Index.Dedupe),
			WeaviateHost:   s.getString(keyWeaviateHost, d.Index.WeaviateHost),
			WeaviateScheme: s.getString(keyWeaviateScheme, d.Index.WeaviateScheme),
		},
		Retrieval: domain.RetrievalSettings{
			K: s.getInt(keyRetrievalK, d.Retrieval.K),
		},
		Ingest: domain.IngestSettings{
			TableChunkSize: s.getInt(keyTableChunkSize, d.Ingest.TableChunkSize),
			Workers:        s.getInt(keyIngestWorkers, d.Ingest.Workers),
		},
		Loaders: domain.LoaderSettings{
			PDFBoilerplate: s.getStrings(keyPDFBoilerplate, d.Loaders.PDFBoilerplate),
			PdftotextPath:  s.getString(keyPdftotext, d.Loaders.PdftotextPath),
			SofficePath:    s.getString(keySoffice, d.Loaders.SofficePath),
		},
		Pipeline:     s.GetPipelineConfig(),
		QueryLogPath: s.configStore.GetString(keyQueryLogPath),
	}

	// Models and base URLs follow the provider unless set explicitly.
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.Embedding.BaseURL == "" && settings.Embedding.Provider.IsLocal() {
		settings.Embedding.BaseURL = domain.DefaultOllamaURL
	}

	return settings, nil
}

func (s *SettingsService) getLLM(providerKey, modelKey, urlKey, apiKey, timeoutKey string,
	defaults domain.LLMSettings) domain.LLMSettings {
	l := domain.LLMSettings{
		Provider: s.getProvider(providerKey, defaults.Provider),
		Model:    s.configStore.GetString(modelKey),
		BaseURL:  s.configStore.GetString(urlKey),
		APIKey:   s.configStore.GetString(apiKey),
		Timeout:  s.getDuration(timeoutKey),
	}
	if l.Model == "" {
		if l.Provider == defaults.Provider {
			l.Model = defaults.Model
		} else if providerKey == keyVisionProvider {
			l.Model = domain.DefaultVisionModels()[l.Provider]
		} else {
			l.Model = domain.DefaultLLMModels()[l.Provider]
		}
	}
	if l.BaseURL == "" && l.Provider.IsLocal() {
		l.BaseURL = domain.DefaultOllamaURL
	}
	return l
}

// setting is one key/value pair written by Save.
type setting struct {
	key string
	val any
}

// Save persists provider, index, retrieval and ingest settings. Empty API
// keys are not written so a key supplied through the environment is never
// blanked in the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyVisionProvider, settings.Vision.Provider.String()},
		{keyVisionModel, settings.Vision.Model},
		{keyVisionBaseURL, settings.Vision.BaseURL},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexCollection, settings.Index.Collection},
		{keyIndexDedupe, settings.Index.Dedupe},
		{keyRetrievalK, settings.Retrieval.K},
		{keyTableChunkSize, settings.Ingest.TableChunkSize},
		{keyIngestWorkers, settings.Ingest.Workers},
	}
	optional := []setting{
		{keyIndexDir, settings.Index.Dir},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyVisionAPIKey, settings.Vision.APIKey},
	}
	for _, o := range optional {
		if o.val != "" {
			values = append(values, o)
		}
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and stores it.
// Provider and backend names are checked against the known sets.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, key)
	}

	var parsed any
	var err error
	switch kind {
	case kindInt:
		var n int
		n, err = strconv.Atoi(value)
		if err == nil && n <= 0 {
			err = fmt.Errorf("must be positive")
		}
		parsed = n
	case kindFloat:
		var f float64
		f, err = strconv.ParseFloat(value, 64)
		if err == nil && f < 0 {
			err = fmt.Errorf("must not be negative")
		}
		parsed = f
	case kindBool:
		parsed, err = strconv.ParseBool(value)
	case kindDuration:
		_, err = time.ParseDuration(value)
		parsed = value
	case kindList:
		parsed = splitList(value)
	default:
		parsed = value
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case keyEmbedProvider:
		if !slices.Contains(domain.AllEmbeddingProviders(), domain.AIProvider(value)) {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider, keyVisionProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid provider: %s", domain.ErrInvalidInput, value)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid index backend: %s", domain.ErrInvalidInput, value)
		}
	}

	return s.configStore.Set(key, parsed)
}

// splitList parses a comma-separated list, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingRequired, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = ""
	if provider.IsLocal() {
		settings.Embedding.BaseURL = domain.DefaultOllamaURL
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the answer model provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setGenerator(provider, model, apiKey, domain.DefaultLLMModels(), func(a *domain.AppSettings) *domain.LLMSettings {
		return &a.LLM
	})
}

// SetVisionProvider configures the image captioning provider.
func (s *SettingsService) SetVisionProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setGenerator(provider, model, apiKey, domain.DefaultVisionModels(), func(a *domain.AppSettings) *domain.LLMSettings {
		return &a.Vision
	})
}

func (s *SettingsService) setGenerator(provider domain.AIProvider, model, apiKey string,
	defaultModels map[domain.AIProvider]string, field func(*domain.AppSettings) *domain.LLMSettings) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingRequired, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	l := field(settings)
	l.Provider = provider
	l.Model = model
	if model == "" {
		l.Model = defaultModels[provider]
	}
	l.BaseURL = ""
	if provider.IsLocal() {
		l.BaseURL = domain.DefaultOllamaURL
	}
	l.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the configured providers and index are usable.
// The vision provider is optional: a misconfigured one only degrades captions.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !slices.Contains(domain.AllEmbeddingProviders(), settings.Embedding.Provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s needs an API key (set %s or SCHOLARSYNC_EMBEDDING_API_KEY)",
			domain.ErrMissingRequired, settings.Embedding.Provider, keyEmbedAPIKey)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %s needs an API key (set %s or SCHOLARSYNC_LLM_API_KEY)",
			domain.ErrMissingRequired, settings.LLM.Provider, keyLLMAPIKey)
	}
	if !settings.Index.Backend.IsValid() {
		return fmt.Errorf("%w: invalid index backend: %s", domain.ErrInvalidInput, settings.Index.Backend)
	}
	if settings.Index.Backend == domain.IndexBackendWeaviate && settings.Index.WeaviateHost == "" {
		return fmt.Errorf("%w: %s is required for the weaviate backend", domain.ErrMissingRequired, keyWeaviateHost)
	}
	if settings.Retrieval.K <= 0 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyRetrievalK)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		overrides := s.loadProcessorConfig("pipeline." + name + ".")
		if len(overrides) == 0 {
			continue
		}
		merged := make(map[string]any)
		for k, v := range cfg.ProcessorConfigs[name] {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		cfg.ProcessorConfigs[name] = merged
	}

	return cfg
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"chunk_size", "overlap", "separators"} {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getDuration(key string) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil {
		return 0
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
