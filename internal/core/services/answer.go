package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Retriever finds the chunks most similar to a question.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.ScoredRecord, error)
}

// AnswerService answers questions from retrieved context.
type AnswerService struct {
	retriever Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	queryLog  driven.QueryLogger
	k         int
	now       func() time.Time
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithK sets how many chunks are retrieved per question.
func WithK(k int) AnswerOption {
	return func(s *AnswerService) {
		if k > 0 {
			s.k = k
		}
	}
}

// WithPromptStore loads the answer template from store instead of the built-in default.
func WithPromptStore(store driven.PromptStore) AnswerOption {
	return func(s *AnswerService) { s.prompts = store }
}

// WithQueryLogger records every answered question.
func WithQueryLogger(l driven.QueryLogger) AnswerOption {
	return func(s *AnswerService) { s.queryLog = l }
}

// NewAnswerService creates an answer service.
func NewAnswerService(retriever Retriever, llm driven.LLMService, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{
		retriever: retriever,
		llm:       llm,
		k:         domain.DefaultRetrievalK,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithTopK returns a copy of the service that retrieves k chunks per question.
// k <= 0 keeps the current value.
func (s *AnswerService) WithTopK(k int) driving.AnswerService {
	c := *s
	WithK(k)(&c)
	return &c
}

// Answer retrieves the top-k chunks, renders the prompt and asks the model.
// With nothing retrieved it returns domain.NoContextAnswer without a model call.
func (s *AnswerService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Answer")
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	logger.Debug("Question: %q (k=%d)", question, s.k)

	start := s.now()
	answer, err := s.answer(ctx, question)
	s.logQuery(question, answer, err, s.now().Sub(start))
	return answer, err
}

func (s *AnswerService) answer(ctx context.Context, question string) (*domain.Answer, error) {
	sources, err := s.retriever.Query(ctx, question, s.k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	if len(sources) == 0 {
		logger.Info("No context retrieved")
		return &domain.Answer{Question: question, Text: domain.NoContextAnswer, Sources: []domain.ScoredRecord{}}, nil
	}

	if s.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnswerGeneration, domain.ErrLLMUnavailable)
	}

	prompt := RenderAnswerPrompt(s.template(), sources, question)
	logger.Debug("Prompt length: %d characters", len(prompt))

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnswerGeneration, err)
	}

	return &domain.Answer{Question: question, Text: text, Sources: sources}, nil
}

// template returns the user's answer template, or the default.
func (s *AnswerService) template() string {
	if s.prompts == nil {
		return domain.DefaultAnswerPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil || tmpl == "" {
		logger.Warn("Using default answer prompt: %v", err)
		return domain.DefaultAnswerPrompt
	}
	return tmpl
}

// RenderAnswerPrompt joins the source contents with blank lines and fills
// the {context} and {question} placeholders in one pass.
func RenderAnswerPrompt(tmpl string, sources []domain.ScoredRecord, question string) string {
	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = src.Record.Content()
	}
	return strings.NewReplacer(
		"{context}", strings.Join(parts, "\n\n"),
		"{question}", question,
	).Replace(tmpl)
}

func (s *AnswerService) logQuery(question string, answer *domain.Answer, err error, elapsed time.Duration) {
	if s.queryLog == nil {
		return
	}
	entry := driven.QueryLogEntry{
		Timestamp: s.now(),
		Question:  question,
		Duration:  elapsed,
	}
	if answer != nil {
		entry.NumSources = len(answer.Sources)
		for _, src := range answer.Sources {
			entry.Sources = append(entry.Sources, src.Record.Filename())
		}
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.queryLog.Log(entry)
}
