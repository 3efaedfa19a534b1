package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
)

func scored(path, content string, score float64) domain.ScoredRecord {
	return domain.ScoredRecord{Record: docRecord(path, content), Score: score}
}

func TestAnswerService_Answer(t *testing.T) {
	retriever := &mockRetriever{results: []domain.ScoredRecord{
		scored("/docs/a.pdf", "Paris is the capital of France.", 0.9),
		scored("/docs/b.pdf", "France is in Europe.", 0.7),
	}}
	llm := &mockLLM{response: "Paris."}
	svc := NewAnswerService(retriever, llm, WithK(2))

	answer, err := svc.Answer(context.Background(), "  What is the capital of France?  ")
	require.NoError(t, err)

	assert.Equal(t, "What is the capital of France?", answer.Question)
	assert.Equal(t, "Paris.", answer.Text)
	assert.Equal(t, retriever.results, answer.Sources)
	assert.Equal(t, 2, retriever.gotK)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Context: Paris is the capital of France.\n\nFrance is in Europe.")
	assert.Contains(t, llm.prompts[0], "Question: What is the capital of France?")
}

func TestAnswerService_Answer_DefaultK(t *testing.T) {
	retriever := &mockRetriever{}
	svc := NewAnswerService(retriever, &mockLLM{}, WithK(0))

	_, err := svc.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRetrievalK, retriever.gotK)
}

func TestAnswerService_WithTopK(t *testing.T) {
	retriever := &mockRetriever{}
	svc := NewAnswerService(retriever, &mockLLM{}, WithK(3))

	_, err := svc.WithTopK(7).Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 7, retriever.gotK)

	_, err = svc.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 3, retriever.gotK, "original service keeps its k")
}

func TestAnswerService_Answer_NoContext(t *testing.T) {
	llm := &mockLLM{response: "should not be used"}
	svc := NewAnswerService(&mockRetriever{}, llm)

	answer, err := svc.Answer(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, domain.NoContextAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, llm.prompts)
}

func TestAnswerService_Answer_Errors(t *testing.T) {
	tests := []struct {
		name      string
		question  string
		retriever *mockRetriever
		llm       driven.LLMService
		want      error
	}{
		{
			name:      "empty question",
			question:  "   ",
			retriever: &mockRetriever{},
			llm:       &mockLLM{},
			want:      domain.ErrInvalidInput,
		},
		{
			name:      "retrieval failure",
			question:  "q",
			retriever: &mockRetriever{err: errors.New("index offline")},
			llm:       &mockLLM{},
			want:      domain.ErrRetrieval,
		},
		{
			name:      "generation failure",
			question:  "q",
			retriever: &mockRetriever{results: []domain.ScoredRecord{scored("/a", "x", 1)}},
			llm:       &mockLLM{err: errors.New("model timeout")},
			want:      domain.ErrAnswerGeneration,
		},
		{
			name:      "no model configured",
			question:  "q",
			retriever: &mockRetriever{results: []domain.ScoredRecord{scored("/a", "x", 1)}},
			llm:       nil,
			want:      domain.ErrAnswerGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAnswerService(tt.retriever, tt.llm)
			answer, err := svc.Answer(context.Background(), tt.question)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, answer)
		})
	}
}

func TestAnswerService_Answer_RetrievalErrorKeepsCause(t *testing.T) {
	svc := NewAnswerService(&mockRetriever{err: domain.ErrEmbeddingUnavailable}, &mockLLM{})

	_, err := svc.Answer(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrRetrieval)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAnswerService_PromptStore(t *testing.T) {
	retriever := &mockRetriever{results: []domain.ScoredRecord{scored("/a", "ctx", 1)}}

	t.Run("custom template", func(t *testing.T) {
		llm := &mockLLM{response: "ok"}
		prompts := &mockPromptStore{prompts: map[string]string{
			driven.PromptAnswer: "Q={question} C={context}",
		}}
		svc := NewAnswerService(retriever, llm, WithPromptStore(prompts))

		_, err := svc.Answer(context.Background(), "why?")
		require.NoError(t, err)
		assert.Equal(t, "Q=why? C=ctx", llm.prompts[0])
	})

	t.Run("missing template falls back to default", func(t *testing.T) {
		llm := &mockLLM{response: "ok"}
		svc := NewAnswerService(retriever, llm, WithPromptStore(&mockPromptStore{}))

		_, err := svc.Answer(context.Background(), "why?")
		require.NoError(t, err)
		assert.Equal(t, RenderAnswerPrompt(domain.DefaultAnswerPrompt, retriever.results, "why?"), llm.prompts[0])
	})
}

func TestRenderAnswerPrompt_SinglePass(t *testing.T) {
	sources := []domain.ScoredRecord{scored("/a", "mentions {question} literally", 1)}

	got := RenderAnswerPrompt("[{context}] [{question}]", sources, "Q")
	assert.Equal(t, "[mentions {question} literally] [Q]", got)
}

func TestAnswerService_QueryLog(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		log := &mockQueryLogger{}
		retriever := &mockRetriever{results: []domain.ScoredRecord{
			scored("/docs/a.pdf", "x", 0.9),
			scored("/docs/b.csv", "y", 0.8),
		}}
		svc := NewAnswerService(retriever, &mockLLM{response: "ok"}, WithQueryLogger(log))

		_, err := svc.Answer(context.Background(), "q")
		require.NoError(t, err)

		require.Len(t, log.entries, 1)
		e := log.entries[0]
		assert.Equal(t, "q", e.Question)
		assert.Equal(t, 2, e.NumSources)
		assert.Equal(t, []string{"a.pdf", "b.csv"}, e.Sources)
		assert.Empty(t, e.Error)
		assert.False(t, e.Timestamp.IsZero())
	})

	t.Run("failure", func(t *testing.T) {
		log := &mockQueryLogger{}
		svc := NewAnswerService(&mockRetriever{err: errors.New("down")}, &mockLLM{}, WithQueryLogger(log))

		_, err := svc.Answer(context.Background(), "q")
		require.Error(t, err)

		require.Len(t, log.entries, 1)
		assert.Contains(t, log.entries[0].Error, "down")
		assert.Zero(t, log.entries[0].NumSources)
	})

	t.Run("empty question is not logged", func(t *testing.T) {
		log := &mockQueryLogger{}
		svc := NewAnswerService(&mockRetriever{}, &mockLLM{}, WithQueryLogger(log))

		_, err := svc.Answer(context.Background(), "")
		require.Error(t, err)
		assert.Empty(t, log.entries)
	})
}
