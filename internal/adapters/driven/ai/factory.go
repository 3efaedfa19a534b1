// Package ai provides factory functions for creating model provider adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/embedding"
	geminiembed "github.com/kedarkumargolla/scholarsync/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/kedarkumargolla/scholarsync/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/kedarkumargolla/scholarsync/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/kedarkumargolla/scholarsync/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/kedarkumargolla/scholarsync/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/kedarkumargolla/scholarsync/internal/adapters/driven/llm/ollama"
	openaillm "github.com/kedarkumargolla/scholarsync/internal/adapters/driven/llm/openai"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// embeddingBurst is the token bucket size for throttled embedding providers.
const embeddingBurst = 2

// Services holds the model services the application runs on.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService

	// Vision is nil when no vision provider is configured; images then
	// get the filename/location record.
	Vision driven.LLMService
}

// Close releases all services.
func (s *Services) Close() {
	for _, c := range []interface{ Close() error }{s.Embedding, s.LLM, s.Vision} {
		if c != nil {
			_ = c.Close()
		}
	}
}

// NewServices creates the embedding, text and vision services from settings.
// The embedding and text services are required; a vision provider error only
// leaves Vision nil and is returned as a warning.
func NewServices(ctx context.Context, settings *domain.AppSettings) (*Services, []string, error) {
	emb, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if emb == nil {
		return nil, nil, fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	llm, err := CreateLLMService(ctx, &settings.LLM)
	if err != nil || llm == nil {
		_ = emb.Close()
		if err == nil {
			err = fmt.Errorf("llm provider %q is not configured", settings.LLM.Provider)
		}
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	var warnings []string
	vision, err := CreateLLMService(ctx, &settings.Vision)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("vision model unavailable, images will not be captioned: %v", err))
		vision = nil
	}

	return &Services{Embedding: emb, LLM: llm, Vision: vision}, warnings, nil
}

// CreateEmbeddingService creates the embedding service for settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: embeddingDimensions[settings.Model],
		})

	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		svc, err = geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama, openai or gemini")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return embedding.NewRateLimited(svc, settings.RequestsPerSecond, embeddingBurst), nil
}

// CreateLLMService creates the generation service for settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// embeddingDimensions lists vector sizes of common local embedding models.
var embeddingDimensions = map[string]int{
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
	"snowflake-arctic-embed": 1024,
}

// Pinger is a service whose reachability can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check pings svc with a short timeout.
func Check(ctx context.Context, svc Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
