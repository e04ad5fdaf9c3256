package sink

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// MaxPayload is the largest message, in bytes, that a single record may carry
// before a sink truncates it. Structured log transports cap individual record
// payloads at roughly 4 KiB, and the cap has been reduced before, so the limit
// is set with headroom rather than at the transport maximum.
const MaxPayload = 4000

// Severity classifies a record. The numbering leaves room below Verbose for
// transport-internal levels.
type Severity int

const (
	SeverityVerbose Severity = iota + 2
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "verbose"
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a textual severity, as written in the harness
// manifest, into a Severity.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "verbose":
		return SeverityVerbose, nil
	case "debug":
		return SeverityDebug, nil
	case "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarn, nil
	case "error":
		return SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", value)
	}
}

// Record is one forwarded log entry: a byte string classified by severity and
// tag. Message bytes are forwarded as read; they are not required to be a
// complete line, valid UTF-8, or even a single logical write.
type Record struct {
	Time     time.Time
	Severity Severity
	Tag      string
	Message  string
}

// Sink accepts records. Implementations may truncate messages longer than
// MaxPayload and must be safe for use from multiple goroutines.
type Sink interface {
	Write(rec Record)
}

// Clamp bounds a message to MaxPayload bytes, reporting whether truncation
// occurred.
func Clamp(message string) (string, bool) {
	if len(message) <= MaxPayload {
		return message, false
	}
	return message[:MaxPayload], true
}

// Recorder is an in-memory sink used by tests and by components that need to
// inspect forwarded records after the fact.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Write stores the record, truncating the message at MaxPayload.
func (r *Recorder) Write(rec Record) {
	rec.Message, _ = Clamp(rec.Message)
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

// Records returns a snapshot of everything written so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}
