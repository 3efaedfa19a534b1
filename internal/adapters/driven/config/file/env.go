package file

import (
	"errors"
	"io/fs"
	"reflect"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment variables that override config.
const EnvPrefix = "SCHOLARSYNC"

// envOverlay lists the config keys that can be set from the environment.
// Unset variables leave their pointer nil. The key tag is the config key.
type envOverlay struct {
	EmbeddingProvider *string  `envconfig:"EMBEDDING_PROVIDER" key:"embedding.provider"`
	EmbeddingModel    *string  `envconfig:"EMBEDDING_MODEL" key:"embedding.model"`
	EmbeddingBaseURL  *string  `envconfig:"EMBEDDING_BASE_URL" key:"embedding.base_url"`
	EmbeddingAPIKey   *string  `envconfig:"EMBEDDING_API_KEY" key:"embedding.api_key"`
	EmbeddingRPS      *float64 `envconfig:"EMBEDDING_RPS" key:"embedding.requests_per_second"`

	LLMProvider *string `envconfig:"LLM_PROVIDER" key:"llm.provider"`
	LLMModel    *string `envconfig:"LLM_MODEL" key:"llm.model"`
	LLMBaseURL  *string `envconfig:"LLM_BASE_URL" key:"llm.base_url"`
	LLMAPIKey   *string `envconfig:"LLM_API_KEY" key:"llm.api_key"`

	VisionProvider *string `envconfig:"VISION_PROVIDER" key:"vision.provider"`
	VisionModel    *string `envconfig:"VISION_MODEL" key:"vision.model"`
	VisionBaseURL  *string `envconfig:"VISION_BASE_URL" key:"vision.base_url"`
	VisionAPIKey   *string `envconfig:"VISION_API_KEY" key:"vision.api_key"`

	IndexBackend    *string `envconfig:"INDEX_BACKEND" key:"index.backend"`
	IndexDir        *string `envconfig:"INDEX_DIR" key:"index.dir"`
	IndexCollection *string `envconfig:"INDEX_COLLECTION" key:"index.collection"`
	IndexDedupe     *bool   `envconfig:"INDEX_DEDUPE" key:"index.dedupe"`
	WeaviateHost    *string `envconfig:"WEAVIATE_HOST" key:"index.weaviate.host"`
	WeaviateScheme  *string `envconfig:"WEAVIATE_SCHEME" key:"index.weaviate.scheme"`

	RetrievalK    *int    `envconfig:"RETRIEVAL_K" key:"retrieval.k"`
	IngestWorkers *int    `envconfig:"INGEST_WORKERS" key:"ingest.workers"`
	QueryLogPath  *string `envconfig:"QUERYLOG_PATH" key:"querylog.path"`
}

// LoadDotEnv loads variables from the given .env files without overriding
// the real environment. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// EnvOverlay reads SCHOLARSYNC_* variables and returns them keyed by
// config key. Integers are returned as int64 to match TOML decoding.
func EnvOverlay() (map[string]any, error) {
	var env envOverlay
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, err
	}

	out := make(map[string]any)
	v := reflect.ValueOf(env)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		if f.IsNil() {
			continue
		}
		val := f.Elem().Interface()
		if n, ok := val.(int); ok {
			val = int64(n)
		}
		out[t.Field(i).Tag.Get("key")] = val
	}
	return out, nil
}
