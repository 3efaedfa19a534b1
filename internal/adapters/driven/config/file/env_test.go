package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverlay_OnlySetVariables(t *testing.T) {
	t.Setenv("SCHOLARSYNC_LLM_PROVIDER", "anthropic")
	t.Setenv("SCHOLARSYNC_RETRIEVAL_K", "7")
	t.Setenv("SCHOLARSYNC_INDEX_DEDUPE", "true")
	t.Setenv("SCHOLARSYNC_EMBEDDING_RPS", "1.5")

	overlay, err := EnvOverlay()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", overlay["llm.provider"])
	assert.Equal(t, int64(7), overlay["retrieval.k"])
	assert.Equal(t, true, overlay["index.dedupe"])
	assert.Equal(t, 1.5, overlay["embedding.requests_per_second"])
	_, ok := overlay["llm.model"]
	assert.False(t, ok)
}

func TestEnvOverlay_InvalidValue(t *testing.T) {
	t.Setenv("SCHOLARSYNC_RETRIEVAL_K", "many")

	_, err := EnvOverlay()

	assert.Error(t, err)
}

func TestEnvOverlay_FeedsConfigStore(t *testing.T) {
	t.Setenv("SCHOLARSYNC_INDEX_COLLECTION", "papers")

	overlay, err := EnvOverlay()
	require.NoError(t, err)
	store := newTestStore(t, WithOverlay(overlay))

	assert.Equal(t, "papers", store.GetString("index.collection"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCHOLARSYNC_LLM_MODEL=from-dotenv\n"), 0o600))
	t.Setenv("SCHOLARSYNC_LLM_MODEL", "")
	require.NoError(t, os.Unsetenv("SCHOLARSYNC_LLM_MODEL"))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-dotenv", os.Getenv("SCHOLARSYNC_LLM_MODEL"))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCHOLARSYNC_LLM_MODEL=from-dotenv\n"), 0o600))
	t.Setenv("SCHOLARSYNC_LLM_MODEL", "from-shell")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-shell", os.Getenv("SCHOLARSYNC_LLM_MODEL"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
