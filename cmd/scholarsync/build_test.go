package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/cli"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// fakeOllama serves /api/embed and /api/generate with deterministic output.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embed":
			var req struct {
				Input []string `json:"input"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			vectors := make([][]float32, len(req.Input))
			for i, text := range req.Input {
				lower := strings.ToLower(text)
				vectors[i] = []float32{
					float32(strings.Count(lower, "paris")) + 0.1,
					float32(strings.Count(lower, "berlin")) + 0.1,
					1,
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": vectors})
		case "/api/tags":
			_ = json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
		case "/api/generate":
			_ = json.NewEncoder(w).Encode(map[string]any{"response": "Paris.", "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T, backend string) string {
	t.Helper()
	srv := fakeOllama(t)
	dir := t.TempDir()
	t.Setenv("SCHOLARSYNC_EMBEDDING_BASE_URL", srv.URL)
	t.Setenv("SCHOLARSYNC_LLM_BASE_URL", srv.URL)
	t.Setenv("SCHOLARSYNC_VISION_BASE_URL", srv.URL)
	t.Setenv("SCHOLARSYNC_INDEX_BACKEND", backend)
	t.Setenv("SCHOLARSYNC_INDEX_DIR", filepath.Join(dir, "index"))
	return dir
}

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "capitals.csv")
	data := "country,capital,population\nFrance,Paris,2100000\nGermany,Berlin,3600000\nItaly,Rome,2800000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestBuild_EphemeralEndToEnd(t *testing.T) {
	dir := setupEnv(t, "sqlite")
	ctx := context.Background()

	svc, err := build(ctx, filepath.Join(dir, "config"), cli.Options{Ephemeral: true})
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	stats, err := svc.Index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, domain.DefaultCollection, stats.Collection)
	assert.Zero(t, stats.Entries)

	csv := writeCSV(t, dir)
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("ignored"), 0o644))

	result, err := svc.Ingest.Ingest(ctx, []string{csv, notes}, nil)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, []string{"notes.txt"}, result.Ignored)
	assert.Equal(t, len(result.Chunks), result.Indexed)
	assert.GreaterOrEqual(t, result.Indexed, 2, "summary plus at least one row chunk")

	answer, err := svc.Answer.Answer(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer.Text)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "capitals.csv", answer.Sources[0].Record.Filename())

	existed, err := svc.Index.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, existed)

	answer, err = svc.Answer.Answer(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, domain.NoContextAnswer, answer.Text)
}

func TestBuild_SQLitePersistsAcrossRuns(t *testing.T) {
	dir := setupEnv(t, "sqlite")
	ctx := context.Background()
	configDir := filepath.Join(dir, "config")

	first, err := build(ctx, configDir, cli.Options{})
	require.NoError(t, err)
	result, err := first.Ingest.Ingest(ctx, []string{writeCSV(t, dir)}, nil)
	require.NoError(t, err)
	require.Positive(t, result.Indexed)
	require.NoError(t, first.Close())

	second, err := build(ctx, configDir, cli.Options{})
	require.NoError(t, err)
	defer func() { require.NoError(t, second.Close()) }()

	stats, err := second.Index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", stats.Backend)
	assert.Equal(t, filepath.Join(dir, "index", domain.DefaultCollection), stats.Dir)
	assert.Equal(t, result.Indexed, stats.Entries)

	// Dedupe is on by default, so a second ingestion adds nothing.
	again, err := second.Ingest.Ingest(ctx, []string{filepath.Join(dir, "capitals.csv")}, nil)
	require.NoError(t, err)
	require.True(t, again.OK())
	assert.Zero(t, again.Indexed, "unchanged chunks are not written again")
	assert.Equal(t, result.Indexed, len(again.Chunks))
	stats, err = second.Index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Indexed, stats.Entries)
}

func TestBuild_RelativePathsShareSource(t *testing.T) {
	dir := setupEnv(t, "memory")
	ctx := context.Background()
	writeCSV(t, dir)
	t.Chdir(dir)

	svc, err := build(ctx, filepath.Join(dir, "config"), cli.Options{})
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	first, err := svc.Ingest.Ingest(ctx, []string{"capitals.csv"}, nil)
	require.NoError(t, err)
	require.Positive(t, first.Indexed)
	for _, c := range first.Chunks {
		assert.Equal(t, filepath.Join(dir, "capitals.csv"), c.Source())
	}

	again, err := svc.Ingest.Ingest(ctx, []string{"./capitals.csv"}, nil)
	require.NoError(t, err)
	assert.Zero(t, again.Indexed, "the same file under another relative name is a duplicate")

	stats, err := svc.Index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Indexed, stats.Entries)
}

func TestBuild_SettingsFromConfigFile(t *testing.T) {
	dir := setupEnv(t, "memory")
	configDir := filepath.Join(dir, "config")

	svc, err := build(context.Background(), configDir, cli.Options{})
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	require.NoError(t, svc.Settings.Set("retrieval.k", "7"))
	settings, err := svc.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, settings.Retrieval.K)
	assert.Equal(t, domain.IndexBackendMemory, settings.Index.Backend)
	assert.FileExists(t, filepath.Join(configDir, "config.toml"))
}

func TestBuild_Health(t *testing.T) {
	dir := setupEnv(t, "memory")
	svc, err := build(context.Background(), filepath.Join(dir, "config"), cli.Options{})
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	health := svc.Health(context.Background())
	require.Len(t, health, 3)
	for _, h := range health {
		assert.NoError(t, h.Err, h.Role)
	}
}

func TestCheckModels_NotConfigured(t *testing.T) {
	health := checkModels(context.Background(), []modelRole{{"vision", nil}})
	require.Len(t, health, 1)
	assert.EqualError(t, health[0].Err, "not configured")
}

func TestNewVectorStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		cfg       domain.IndexSettings
		ephemeral bool
		wantName  string
		wantErr   bool
	}{
		{"sqlite", domain.IndexSettings{Backend: domain.IndexBackendSQLite, Dir: dir}, false, "sqlite", false},
		{"empty backend means sqlite", domain.IndexSettings{Dir: dir}, false, "sqlite", false},
		{"memory", domain.IndexSettings{Backend: domain.IndexBackendMemory}, false, "memory", false},
		{"ephemeral overrides", domain.IndexSettings{Backend: domain.IndexBackendWeaviate}, true, "memory", false},
		{"weaviate", domain.IndexSettings{Backend: domain.IndexBackendWeaviate, WeaviateHost: "localhost:8080", WeaviateScheme: "http"}, false, "weaviate", false},
		{"weaviate without host", domain.IndexSettings{Backend: domain.IndexBackendWeaviate}, false, "", true},
		{"unknown", domain.IndexSettings{Backend: "chroma"}, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, err := newVectorStore(tt.cfg, tt.ephemeral)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()
			assert.Equal(t, tt.wantName, store.Name())
		})
	}
}
