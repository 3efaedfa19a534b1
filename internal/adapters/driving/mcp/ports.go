package mcp

import (
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions from the knowledge base.
	Answer driving.AnswerService

	// Ingest adds files to the knowledge base. Optional.
	Ingest driving.IngestService

	// Index reports on the knowledge base. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
