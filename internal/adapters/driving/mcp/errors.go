// Package mcp provides an MCP (Model Context Protocol) server adapter for ScholarSync.
// It lets AI assistants ask questions against the local knowledge base and
// feed it new files.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
