package driven

import "time"

// QueryLogEntry describes one answered question.
type QueryLogEntry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Question   string        `json:"question"`
	NumSources int           `json:"num_sources"`
	Sources    []string      `json:"sources,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	LatencyMs  int64         `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
}

// QueryLogger records answered questions.
type QueryLogger interface {
	Log(entry QueryLogEntry)
}
