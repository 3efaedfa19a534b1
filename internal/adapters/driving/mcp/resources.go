package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ScholarSync resources.
	uriScheme = "scholarsync://"

	statsURI   = uriScheme + "index/stats"
	formatsURI = uriScheme + "formats"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         formatsURI,
		Name:        "formats",
		Description: "File extensions accepted by the ingest tool",
		MIMEType:    "application/json",
	}, s.handleFormatsResource)

	if s.ports.Index != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         statsURI,
			Name:        "index-stats",
			Description: "Collection name, location, backend and entry count",
			MIMEType:    "application/json",
		}, s.handleStatsResource)
	}
}

// handleFormatsResource lists the supported extensions.
func (s *Server) handleFormatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, domain.SupportedExtensions())
}

// handleStatsResource returns the current index stats.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
