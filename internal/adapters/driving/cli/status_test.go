package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

func TestStatusCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.stats = &domain.IndexStats{
		Collection: domain.DefaultCollection,
		Dir:        "/home/u/.scholarsync/index",
		Backend:    "sqlite",
		Entries:    128,
	}

	out, err := execute("status")
	require.NoError(t, err)

	assert.Contains(t, out, "Collection: local_knowledge_base")
	assert.Contains(t, out, "Location:   /home/u/.scholarsync/index")
	assert.Contains(t, out, "Backend:    sqlite")
	assert.Contains(t, out, "Entries:    128")
	assert.Contains(t, out, "Embedding:  nomic-embed-text (Ollama (local))")
	assert.Contains(t, out, "Answer:     llama3.2:1b (Ollama (local))")
	assert.Contains(t, out, "Vision:     llava:7b (Ollama (local))")
}

func TestStatusCmd_WithoutSettings(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	out, err := execute("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend:    memory")
	assert.NotContains(t, out, "Models")
	assert.NotContains(t, out, "Location:")
}

func TestStatusCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.stats.Entries = 3

	out, err := execute("status", "--json")
	require.NoError(t, err)

	var got statusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Index)
	assert.Equal(t, 3, got.Index.Entries)
	assert.Equal(t, "nomic-embed-text (Ollama (local))", got.Embedding)
}

func TestStatusCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = errors.New("weaviate unreachable")

	_, err := execute("status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weaviate unreachable")
}

func TestModelLabel(t *testing.T) {
	assert.Equal(t, "gpt-4o (OpenAI (cloud))", modelLabel(domain.AIProviderOpenAI, "gpt-4o"))
	assert.Equal(t, "gemini", modelLabel(domain.AIProviderGemini, ""))
}

func TestStatusCmd_Check(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	checkHealth = func(context.Context) []ModelHealth {
		return []ModelHealth{
			{Role: "embedding"},
			{Role: "answer", Err: errors.New("connection refused")},
		}
	}

	out, err := execute("status", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "Reachability")
	assert.Contains(t, out, "embedding:  ok")
	assert.Contains(t, out, "answer:     unreachable (connection refused)")
}

func TestStatusCmd_CheckNotRequested(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	checkHealth = func(context.Context) []ModelHealth {
		t.Fatal("health should only run with --check")
		return nil
	}

	out, err := execute("status")
	require.NoError(t, err)
	assert.NotContains(t, out, "Reachability")
}
