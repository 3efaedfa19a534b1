package driving

import (
	"context"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// AnswerService answers questions from the knowledge base.
type AnswerService interface {
	// Answer retrieves context for the question and generates a grounded answer.
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}

// IndexService exposes knowledge base administration.
type IndexService interface {
	// Stats describes the current index.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Clear deletes the whole collection. It reports whether anything existed.
	Clear(ctx context.Context) (bool, error)
}
