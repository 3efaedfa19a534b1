package mcp

import (
	"context"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *domain.IngestionResult
	err    error
	paths  []string
}

func (m *mockIngestService) LoadAndSplit(
	_ context.Context, paths []string, _ driving.ProgressListener,
) (*domain.IngestionResult, error) {
	m.paths = paths
	return m.result, m.err
}

func (m *mockIngestService) Ingest(
	_ context.Context, paths []string, _ driving.ProgressListener,
) (*domain.IngestionResult, error) {
	m.paths = paths
	return m.result, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats   *domain.IndexStats
	err     error
	existed bool
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Clear(_ context.Context) (bool, error) {
	return m.existed, m.err
}
