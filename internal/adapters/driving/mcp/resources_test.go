package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

func newReadRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleFormatsResource(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}}, "test")
	require.NoError(t, err)

	result, err := server.handleFormatsResource(context.Background(), newReadRequest(formatsURI))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, `".pdf"`)
	assert.Contains(t, result.Contents[0].Text, `".webp"`)
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats JSON", func(t *testing.T) {
		mockIndex := &mockIndexService{stats: &domain.IndexStats{Collection: "kb", Entries: 3}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Index: mockIndex}, "test")
		require.NoError(t, err)

		result, err := server.handleStatsResource(ctx, newReadRequest(statsURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, statsURI, result.Contents[0].URI)
		assert.Contains(t, result.Contents[0].Text, `"collection": "kb"`)
		assert.Contains(t, result.Contents[0].Text, `"entries": 3`)
	})

	t.Run("returns error", func(t *testing.T) {
		mockIndex := &mockIndexService{err: errors.New("boom")}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Index: mockIndex}, "test")
		require.NoError(t, err)

		_, err = server.handleStatsResource(ctx, newReadRequest(statsURI))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}
