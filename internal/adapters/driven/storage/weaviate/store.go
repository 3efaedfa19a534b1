// Package weaviate provides a driven.VectorStore backed by a Weaviate server.
//
// A collection maps to a Weaviate class with no vectorizer; vectors are
// supplied by the embedding service. Record metadata is stored as a JSON
// string property.
package weaviate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Config configures the Weaviate connection.
type Config struct {
	// Host is host:port of the server.
	Host string

	// Scheme is http or https.
	Scheme string

	// Collection names the collection; it is turned into a class name.
	Collection string
}

// Store is a Weaviate-backed vector store for one class.
type Store struct {
	client     *weaviate.Client
	class      string
	collection string
}

// NewStore connects to the server described by cfg.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: weaviate host is required", domain.ErrInvalidInput)
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}

	class, err := ClassName(cfg.Collection)
	if err != nil {
		return nil, err
	}

	client, err := weaviate.NewClient(weaviate.Config{Host: cfg.Host, Scheme: cfg.Scheme})
	if err != nil {
		return nil, fmt.Errorf("weaviate client error: %w", err)
	}
	return &Store{client: client, class: class, collection: cfg.Collection}, nil
}

// ClassName converts a collection name into a valid Weaviate class name:
// the first letter is upper-cased and anything outside [A-Za-z0-9_] is rejected.
func ClassName(collection string) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	runes := []rune(collection)
	if !unicode.IsLetter(runes[0]) || runes[0] > unicode.MaxASCII {
		return "", fmt.Errorf("%w: collection %q must start with a letter", domain.ErrInvalidInput, collection)
	}
	for _, r := range runes {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return "", fmt.Errorf("%w: collection %q has invalid character %q", domain.ErrInvalidInput, collection, r)
		}
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}

// Name returns the backend name.
func (s *Store) Name() string { return "weaviate" }

// Collection returns the collection name the class was derived from.
func (s *Store) Collection() string { return s.collection }

// Class returns the Weaviate class name.
func (s *Store) Class() string { return s.class }

func (s *Store) exists(ctx context.Context) (bool, error) {
	ok, err := s.client.Schema().ClassExistenceChecker().WithClassName(s.class).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("checking class %s: %w", s.class, err)
	}
	return ok, nil
}

// EnsureCollection creates the class if it does not exist.
func (s *Store) EnsureCollection(ctx context.Context) error {
	ok, err := s.exists(ctx)
	if err != nil || ok {
		return err
	}

	class := &models.Class{
		Class:       s.class,
		Description: "Embedded knowledge base chunks",
		Vectorizer:  "none",
		VectorIndexConfig: map[string]any{
			"distance": "cosine",
		},
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "recordType", DataType: []string{"text"}},
			{Name: "metadata", DataType: []string{"text"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("creating class %s: %w", s.class, err)
	}
	return nil
}

// Add batch-writes entries whose IDs are not yet stored. Weaviate batches
// are not transactional, so on failure the objects written by this call are
// deleted again.
func (s *Store) Add(ctx context.Context, entries []domain.IndexedEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	objects := make([]*models.Object, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !strfmt.IsUUID(e.ID) {
			return 0, fmt.Errorf("%w: entry id %q is not a UUID", domain.ErrInvalidInput, e.ID)
		}
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true

		stored, err := s.client.Data().Checker().WithClassName(s.class).WithID(e.ID).Do(ctx)
		if err != nil {
			return 0, fmt.Errorf("checking object %s: %w", e.ID, err)
		}
		if stored {
			continue
		}

		obj, err := s.toObject(e)
		if err != nil {
			return 0, err
		}
		objects = append(objects, obj)
	}
	if len(objects) == 0 {
		return 0, nil
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err == nil {
		err = batchError(resp)
	}
	if err != nil {
		s.rollback(ctx, objects)
		return 0, fmt.Errorf("writing batch: %w", err)
	}
	return len(objects), nil
}

func (s *Store) toObject(e domain.IndexedEntry) (*models.Object, error) {
	metadataJSON, err := json.Marshal(e.Record.Metadata())
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}
	return &models.Object{
		Class: s.class,
		ID:    strfmt.UUID(e.ID),
		Properties: map[string]any{
			"content":    e.Record.Content(),
			"source":     e.Record.Source(),
			"recordType": e.Record.Type().String(),
			"metadata":   string(metadataJSON),
		},
		Vector: models.C11yVector(e.Embedding),
	}, nil
}

// batchError collects per-object errors from a batch response.
func batchError(resp []models.ObjectsGetResponse) error {
	var msgs []string
	for _, r := range resp {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}
		for _, item := range r.Result.Errors.Error {
			msgs = append(msgs, item.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (s *Store) rollback(ctx context.Context, objects []*models.Object) {
	for _, obj := range objects {
		_ = s.client.Data().Deleter().WithClassName(s.class).WithID(obj.ID.String()).Do(ctx)
	}
}

// Search runs a nearVector query. Score is 1 - cosine distance.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredRecord, error) {
	if k <= 0 {
		return []domain.ScoredRecord{}, nil
	}
	ok, err := s.exists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.ScoredRecord{}, nil
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(query)
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "metadata"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("nearVector query: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", res.Errors[0].Message)
	}

	results := []domain.ScoredRecord{}
	data, _ := res.Data["Get"].(map[string]any)
	rows, _ := data[s.class].([]any)
	for _, row := range rows {
		props, ok := row.(map[string]any)
		if !ok {
			continue
		}
		content, _ := props["content"].(string)

		var metadata map[string]any
		if raw, ok := props["metadata"].(string); ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata: %w", err)
			}
		}

		var score float64
		if additional, ok := props["_additional"].(map[string]any); ok {
			score = 1 - number(additional["distance"])
		}

		results = append(results, domain.ScoredRecord{
			Record: domain.NewRecord(content, metadata),
			Score:  score,
		})
	}
	return results, nil
}

// number reads a GraphQL scalar that may arrive as a float or a string.
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}

// Count aggregates the number of objects in the class.
func (s *Store) Count(ctx context.Context) (int, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return 0, err
	}

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(s.class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate query: %w", err)
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %s", res.Errors[0].Message)
	}

	data, _ := res.Data["Aggregate"].(map[string]any)
	groups, _ := data[s.class].([]any)
	if len(groups) == 0 {
		return 0, nil
	}
	group, _ := groups[0].(map[string]any)
	meta, _ := group["meta"].(map[string]any)
	return int(number(meta["count"])), nil
}

// Drop deletes the class and all its objects.
func (s *Store) Drop(ctx context.Context) (bool, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return false, err
	}
	if err := s.client.Schema().ClassDeleter().WithClassName(s.class).Do(ctx); err != nil {
		return true, fmt.Errorf("deleting class %s: %w", s.class, err)
	}
	return true, nil
}

// Close is a no-op; the client holds no persistent connection.
func (s *Store) Close() error { return nil }
