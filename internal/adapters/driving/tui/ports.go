// Package tui provides an interactive terminal chat for ScholarSync.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions from the knowledge base.
	Answer driving.AnswerService

	// Index reports on and clears the knowledge base. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
