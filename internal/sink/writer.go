package sink

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/ravenfell/cradle/internal/metrics"
)

// wireRecord is the JSON shape persisted for each record.
type wireRecord struct {
	Timestamp time.Time `json:"ts"`
	Severity  string    `json:"severity"`
	Tag       string    `json:"tag"`
	Message   string    `json:"msg"`
	Truncated bool      `json:"truncated,omitempty"`
}

// JSONWriter persists records as newline-delimited JSON. Messages longer than
// MaxPayload are truncated, matching the behaviour of the log transports this
// sink stands in for.
type JSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONWriter constructs a sink writing to w. The writer serializes
// concurrent callers; it never reorders records from a single caller.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

// Write encodes the record. Encoding failures are swallowed: a reader thread
// draining a redirected stream has nowhere to report them, and surfacing them
// through the captured stream would loop.
func (w *JSONWriter) Write(rec Record) {
	message, truncated := Clamp(rec.Message)
	if truncated {
		metrics.IncrementRecordTruncated(rec.Tag)
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	out := wireRecord{
		Timestamp: rec.Time,
		Severity:  rec.Severity.String(),
		Tag:       rec.Tag,
		Message:   message,
		Truncated: truncated,
	}
	w.mu.Lock()
	_ = w.enc.Encode(&out)
	w.mu.Unlock()
}
