package domain

import (
	"fmt"
	"strings"
)

// IngestionStatus is the batch-level outcome of an ingestion.
type IngestionStatus string

// Ingestion statuses.
const (
	IngestionSuccess IngestionStatus = "success"
	IngestionError   IngestionStatus = "error"
)

// MessageNoDocuments is the result message when no file produced a record.
const MessageNoDocuments = "No valid documents loaded."

// MessageCancelled is the result message of an interrupted batch. It takes
// the finished and requested file counts.
const MessageCancelled = "Ingestion cancelled after %d of %d files."

// FailedFile is a file that was recognised but could not be loaded.
type FailedFile struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// String renders the failure as "filename: message".
func (f FailedFile) String() string {
	return f.Filename + ": " + f.Message
}

// IngestionResult is the outcome of one batch ingestion call.
// It is returned to the caller and never persisted.
type IngestionResult struct {
	// Status is success when at least one record was loaded.
	Status IngestionStatus `json:"status"`

	// Message is a one-line human summary.
	Message string `json:"message"`

	// Chunks are the split records in input-file order.
	Chunks []Record `json:"chunks"`

	// Failed lists recognised files whose loader failed, in input order.
	Failed []FailedFile `json:"failed"`

	// Ignored lists files outside the allow-list, in input order.
	Ignored []string `json:"ignored"`

	// Total is the number of paths in the batch.
	Total int `json:"total"`

	// Indexed is the number of chunks written to the index (zero for load-only runs).
	Indexed int `json:"indexed"`
}

// Succeeded returns the number of files that loaded.
func (r *IngestionResult) Succeeded() int {
	return r.Total - len(r.Failed) - len(r.Ignored)
}

// OK returns true if the batch status is success.
func (r *IngestionResult) OK() bool {
	return r.Status == IngestionSuccess
}

// SuccessMessage builds the summary line for a successful batch.
func (r *IngestionResult) SuccessMessage() string {
	msg := fmt.Sprintf("Successfully ingested %d files (%d chunks).", r.Succeeded(), len(r.Chunks))
	if len(r.Ignored) > 0 {
		msg += fmt.Sprintf(" Ignored: %s.", strings.Join(r.Ignored, ", "))
	}
	return msg
}
