package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/ai"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/config/file"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/querylog"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/storage/memory"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/storage/sqlite"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driven/storage/weaviate"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/cli"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/core/services"
	"github.com/kedarkumargolla/scholarsync/internal/loaders"
	"github.com/kedarkumargolla/scholarsync/internal/loaders/docx"
	"github.com/kedarkumargolla/scholarsync/internal/loaders/images"
	"github.com/kedarkumargolla/scholarsync/internal/loaders/pdf"
	"github.com/kedarkumargolla/scholarsync/internal/loaders/pptx"
	"github.com/kedarkumargolla/scholarsync/internal/loaders/tabular"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
	"github.com/kedarkumargolla/scholarsync/internal/postprocessors"
)

// build wires the application from configuration in configDir
// (~/.scholarsync when empty). Model providers that cannot be created are
// logged and left unset so settings commands keep working.
func build(ctx context.Context, configDir string, opts cli.Options) (*cli.Services, error) {
	if err := file.LoadDotEnv(); err != nil {
		logger.Warn("load .env: %v", err)
	}
	overlay, err := file.EnvOverlay()
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	configStore, err := file.NewConfigStore(configDir, file.WithOverlay(overlay))
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var closers []func() error

	var (
		embedder driven.EmbeddingService
		llm      driven.LLMService
		vision   driven.LLMService
	)
	models, warnings, err := ai.NewServices(ctx, settings)
	if err != nil {
		logger.Warn("models unavailable: %v", err)
	} else {
		embedder, llm, vision = models.Embedding, models.LLM, models.Vision
		closers = append(closers, func() error { models.Close(); return nil })
	}
	for _, w := range warnings {
		logger.Warn("%s", w)
	}

	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	registry, err := newLoaderRegistry(settings, prompts, vision)
	if err != nil {
		return nil, err
	}
	pipeline, err := postprocessors.DefaultPipeline(settings.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	store, location, err := newVectorStore(settings.Index, opts.Ephemeral)
	if err != nil {
		return nil, err
	}
	closers = append(closers, store.Close)

	indexService := services.NewIndexService(store, embedder,
		services.WithDedupe(settings.Index.Dedupe),
		services.WithLocation(location),
	)
	if opts.Ephemeral {
		if err := indexService.Open(ctx); err != nil {
			return nil, err
		}
	}

	answerOpts := []services.AnswerOption{
		services.WithK(settings.Retrieval.K),
		services.WithPromptStore(prompts),
	}
	if settings.QueryLogPath != "" {
		ql, err := querylog.Open(settings.QueryLogPath)
		if err != nil {
			return nil, err
		}
		closers = append(closers, ql.Close)
		answerOpts = append(answerOpts, services.WithQueryLogger(ql))
	}

	return &cli.Services{
		Settings: settingsService,
		Ingest:   services.NewIngestService(registry, pipeline, indexService, settings.Ingest.Workers),
		Index:    indexService,
		Answer:   services.NewAnswerService(indexService, llm, answerOpts...),
		Health: func(ctx context.Context) []cli.ModelHealth {
			return checkModels(ctx, []modelRole{
				{"embedding", embedder},
				{"answer", llm},
				{"vision", vision},
			})
		},
		Close: func() error {
			var errs []error
			for i := len(closers) - 1; i >= 0; i-- {
				errs = append(errs, closers[i]())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// modelRole pairs a model service with what it is used for.
type modelRole struct {
	role string
	svc  any
}

// checkModels pings every model that supports it. A missing model is
// reported as unavailable.
func checkModels(ctx context.Context, roles []modelRole) []cli.ModelHealth {
	out := make([]cli.ModelHealth, 0, len(roles))
	for _, r := range roles {
		h := cli.ModelHealth{Role: r.role}
		switch svc := r.svc.(type) {
		case nil:
			h.Err = errors.New("not configured")
		case ai.Pinger:
			h.Err = ai.Check(ctx, svc)
		}
		out = append(out, h)
	}
	return out
}

// newLoaderRegistry registers a loader for every supported format.
func newLoaderRegistry(settings *domain.AppSettings, prompts driven.PromptStore, vision driven.LLMService) (*loaders.Registry, error) {
	captionOpts := []images.ProcessorOption{images.WithTimeout(settings.Vision.Timeout)}
	if p, err := prompts.Load(driven.PromptImageCaption); err == nil {
		captionOpts = append(captionOpts, images.WithPrompt(p))
	}

	registry, err := loaders.NewRegistry(
		pdf.New(
			pdf.WithBinary(settings.Loaders.PdftotextPath),
			pdf.WithBoilerplate(settings.Loaders.PDFBoilerplate),
		),
		docx.New(),
		pptx.New(pptx.WithSoffice(settings.Loaders.SofficePath)),
		tabular.NewLoader(tabular.WithChunkSize(settings.Ingest.TableChunkSize)),
		images.NewLoader(images.NewProcessor(vision, captionOpts...)),
	)
	if err != nil {
		return nil, fmt.Errorf("register loaders: %w", err)
	}
	if missing := registry.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("no loader for formats %v", missing)
	}
	return registry, nil
}

// newVectorStore opens the configured backend and describes where it lives.
func newVectorStore(cfg domain.IndexSettings, ephemeral bool) (driven.VectorStore, string, error) {
	if ephemeral {
		cfg.Backend = domain.IndexBackendMemory
	}

	switch cfg.Backend {
	case domain.IndexBackendMemory:
		return memory.NewVectorStore(cfg.Collection), "", nil

	case domain.IndexBackendWeaviate:
		store, err := weaviate.NewStore(weaviate.Config{
			Host:       cfg.WeaviateHost,
			Scheme:     cfg.WeaviateScheme,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open weaviate index: %w", err)
		}
		return store, fmt.Sprintf("%s://%s (class %s)", cfg.WeaviateScheme, cfg.WeaviateHost, store.Class()), nil

	case domain.IndexBackendSQLite, "":
		store, err := sqlite.NewStore(sqlite.Config{Dir: cfg.Dir, Collection: cfg.Collection})
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite index: %w", err)
		}
		return store, store.Dir(), nil

	default:
		return nil, "", fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}
