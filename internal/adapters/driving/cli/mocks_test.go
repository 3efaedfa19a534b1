package cli

import (
	"bytes"
	"context"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	question string
	k        int
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockAnswerService) WithTopK(k int) driving.AnswerService {
	m.k = k
	return m
}

// mockIngestService reports every path to the listener before returning result.
type mockIngestService struct {
	result *domain.IngestionResult
	err    error
	paths  []string
}

func (m *mockIngestService) LoadAndSplit(
	ctx context.Context, paths []string, listener driving.ProgressListener,
) (*domain.IngestionResult, error) {
	return m.Ingest(ctx, paths, listener)
}

func (m *mockIngestService) Ingest(
	_ context.Context, paths []string, listener driving.ProgressListener,
) (*domain.IngestionResult, error) {
	m.paths = paths
	if listener != nil {
		for i, p := range paths {
			listener.OnFile(i, len(paths), p)
		}
	}
	return m.result, m.err
}

type mockIndexService struct {
	stats   *domain.IndexStats
	err     error
	existed bool
	cleared bool
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Clear(_ context.Context) (bool, error) {
	m.cleared = true
	return m.existed, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	set         map[string]string
	provider    domain.AIProvider
	model       string
	apiKey      string
	target      string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.target, m.provider, m.model, m.apiKey = "embedding", p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.target, m.provider, m.model, m.apiKey = "llm", p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetVisionProvider(p domain.AIProvider, model, apiKey string) error {
	m.target, m.provider, m.model, m.apiKey = "vision", p, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	answer   *mockAnswerService
	ingest   *mockIngestService
	index    *mockIndexService
	settings *mockSettingsService
}

// setupTestServices installs fresh mocks and returns them with a cleanup
// function that restores the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		answer: &mockAnswerService{answer: &domain.Answer{Text: "42"}},
		ingest: &mockIngestService{result: &domain.IngestionResult{
			Status: domain.IngestionSuccess, Message: "Successfully ingested 0 files (0 chunks).",
		}},
		index: &mockIndexService{stats: &domain.IndexStats{
			Collection: domain.DefaultCollection, Backend: "memory",
		}},
		settings: newMockSettingsService(),
	}

	prevSettings, prevIngest, prevIndex, prevAnswer := settingsService, ingestService, indexService, answerService
	prevBootstrap, prevHealth := bootstrap, checkHealth
	SetServices(&Services{
		Settings: ts.settings,
		Ingest:   ts.ingest,
		Index:    ts.index,
		Answer:   ts.answer,
	})
	bootstrap = nil

	return ts, func() {
		settingsService, ingestService, indexService, answerService = prevSettings, prevIngest, prevIndex, prevAnswer
		bootstrap, checkHealth = prevBootstrap, prevHealth
		ingestJSON, ingestRecursive = false, false
		askK, askJSON = 0, false
		resetYes = false
		statusJSON, statusCheck = false, false
		verbose, ephemeral = false, false
	}
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
