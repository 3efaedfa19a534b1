package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the knowledge base"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one retrieved chunk behind an answer.
type SourceOutput struct {
	Filename string  `json:"filename"`
	Source   string  `json:"source"`
	Type     string  `json:"type"`
	Score    float64 `json:"score"`
	Content  string  `json:"content,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Paths []string `json:"paths" jsonschema:"absolute paths of the files to ingest"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Chunks  int      `json:"chunks"`
	Indexed int      `json:"indexed"`
	Failed  []string `json:"failed,omitempty"`
	Ignored []string `json:"ignored,omitempty"`
}

// StatsInput is the (empty) input schema for the index_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the index_stats tool.
type StatsOutput struct {
	Collection string `json:"collection"`
	Dir        string `json:"dir"`
	Backend    string `json:"backend"`
	Entries    int    `json:"entries"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the local knowledge base",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Load, chunk and index local files (PDF, Word, PowerPoint, Excel, CSV, images)",
		}, s.handleIngest)
	}

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_stats",
			Description: "Describe the knowledge base collection",
		}, s.handleStats)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Filename: src.Record.Filename(),
			Source:   src.Record.Source(),
			Type:     src.Record.Type().String(),
			Score:    src.Score,
			Content:  src.Record.Content(),
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if len(input.Paths) == 0 {
		return nil, IngestOutput{}, errors.New("at least one path is required")
	}

	// Relative paths resolve against the server's working directory.
	paths := make([]string, len(input.Paths))
	for i, p := range input.Paths {
		paths[i] = domain.AbsPath(p)
	}

	result, err := s.ports.Ingest.Ingest(ctx, paths, nil)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("ingest: %w", err)
	}

	output := IngestOutput{
		Status:  string(result.Status),
		Message: result.Message,
		Chunks:  len(result.Chunks),
		Indexed: result.Indexed,
		Ignored: result.Ignored,
	}
	for _, f := range result.Failed {
		output.Failed = append(output.Failed, f.String())
	}

	return nil, output, nil
}

// handleStats handles the index_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput(*stats), nil
}
