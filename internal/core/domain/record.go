package domain

import (
	"encoding/json"
	"maps"
	"path/filepath"
	"strings"
)

// RecordType classifies what a Record was extracted from.
type RecordType string

// Record types.
const (
	// RecordTypeDocument is free text from a PDF, Word, presentation or fallback load.
	RecordTypeDocument RecordType = "document"

	// RecordTypeImage is the caption (or placeholder) for an image file.
	RecordTypeImage RecordType = "image"

	// RecordTypeTableSummary describes a whole table: schema and statistics.
	RecordTypeTableSummary RecordType = "table_summary"

	// RecordTypeTableChunk is a contiguous slice of table rows.
	RecordTypeTableChunk RecordType = "table_chunk"
)

// IsValid returns true if the record type is recognised.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeDocument, RecordTypeImage, RecordTypeTableSummary, RecordTypeTableChunk:
		return true
	default:
		return false
	}
}

// Splittable reports whether the chunking stage should split records of this type.
// Table records arrive pre-chunked and image captions are kept whole.
func (t RecordType) Splittable() bool {
	return t == RecordTypeDocument
}

// String returns the string representation.
func (t RecordType) String() string {
	return string(t)
}

// Metadata keys.
const (
	MetaSource         = "source"
	MetaFilename       = "filename"
	MetaType           = "type"
	MetaExtension      = "extension"
	MetaColumns        = "columns"
	MetaRowCount       = "row_count"
	MetaColumnCount    = "column_count"
	MetaNumericColumns = "numeric_columns"
	MetaTextColumns    = "text_columns"
	MetaChunkIndex     = "chunk_index"
	MetaTotalChunks    = "total_chunks"
	MetaPage           = "page"
	MetaSlideCount     = "slide_count"
	MetaWidth          = "width"
	MetaHeight         = "height"
)

// Record is the unit of text flowing through the pipeline: extracted
// content plus provenance metadata. Records are immutable; the With
// methods return modified copies.
type Record struct {
	content  string
	metadata map[string]any
}

// NewRecord creates a record from content and metadata.
// The metadata map is copied.
func NewRecord(content string, metadata map[string]any) Record {
	return Record{content: content, metadata: maps.Clone(metadata)}
}

// NewSourceRecord creates a record with the required provenance keys
// derived from path.
func NewSourceRecord(path string, typ RecordType, content string) Record {
	return Record{
		content:  content,
		metadata: SourceMetadata(path, typ),
	}
}

// SourceMetadata returns the required metadata keys for a file.
func SourceMetadata(path string, typ RecordType) map[string]any {
	name := filepath.Base(path)
	return map[string]any{
		MetaSource:    path,
		MetaFilename:  name,
		MetaType:      string(typ),
		MetaExtension: strings.ToLower(filepath.Ext(name)),
	}
}

// Content returns the record text.
func (r Record) Content() string {
	return r.content
}

// Metadata returns a copy of the record metadata.
func (r Record) Metadata() map[string]any {
	return maps.Clone(r.metadata)
}

// Get returns a single metadata value.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.metadata[key]
	return v, ok
}

// GetString returns a metadata value as a string, or "" if absent or not a string.
func (r Record) GetString(key string) string {
	s, _ := r.metadata[key].(string)
	return s
}

// GetInt returns a metadata value as an int.
// JSON round trips turn ints into float64, so both are accepted.
func (r Record) GetInt(key string) (int, bool) {
	switch v := r.metadata[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Source returns the source file path.
func (r Record) Source() string { return r.GetString(MetaSource) }

// Filename returns the base name of the source file.
func (r Record) Filename() string { return r.GetString(MetaFilename) }

// Extension returns the lowercase extension including the dot.
func (r Record) Extension() string { return r.GetString(MetaExtension) }

// Type returns the record type.
func (r Record) Type() RecordType { return RecordType(r.GetString(MetaType)) }

// WithContent returns a copy of r with different content and the same metadata.
func (r Record) WithContent(content string) Record {
	return Record{content: content, metadata: maps.Clone(r.metadata)}
}

// WithMetadata returns a copy of r with key set to value.
func (r Record) WithMetadata(key string, value any) Record {
	md := maps.Clone(r.metadata)
	if md == nil {
		md = make(map[string]any, 1)
	}
	md[key] = value
	return Record{content: r.content, metadata: md}
}

// Validate checks that the required metadata keys are present.
func (r Record) Validate() error {
	for _, key := range []string{MetaSource, MetaFilename, MetaType, MetaExtension} {
		if _, ok := r.metadata[key].(string); !ok {
			return &MissingMetadataError{Key: key}
		}
	}
	if !r.Type().IsValid() {
		return &MissingMetadataError{Key: MetaType}
	}
	return nil
}

// MissingMetadataError reports a record without a required metadata key.
type MissingMetadataError struct {
	Key string
}

func (e *MissingMetadataError) Error() string {
	return "record metadata missing " + e.Key
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *MissingMetadataError) Unwrap() error {
	return ErrInvalidInput
}

type recordJSON struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{Content: r.content, Metadata: r.metadata})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var aux recordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.content = aux.Content
	r.metadata = aux.Metadata
	return nil
}

// IndexedEntry is a chunk with its embedding, as held by a vector store.
type IndexedEntry struct {
	// ID uniquely identifies the entry within its collection.
	ID string

	// Record is the chunk text and metadata.
	Record Record

	// Embedding is the vector computed from the record content.
	Embedding []float32
}

// ScoredRecord is a record returned from a similarity search.
type ScoredRecord struct {
	// Record is the stored chunk.
	Record Record `json:"record"`

	// Score is the cosine similarity to the query (higher is closer).
	Score float64 `json:"score"`
}
