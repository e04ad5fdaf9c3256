package redirect

import (
	"fmt"
	"os"

	"github.com/ravenfell/cradle/internal/sink"
)

// Stream describes one redirectable standard stream: its buffered handle, the
// raw descriptor number whose writes are captured, and the fixed severity and
// tag stamped on every forwarded record. The pipe pair is either both unset
// or both valid; a stream transitions unset to redirected exactly once.
type Stream struct {
	file     *os.File
	fd       int
	severity sink.Severity
	tag      string
	pipe     [2]int
}

// streams is the fixed default table, one entry per standard stream. New
// copies it before applying options, so these entries only ever hold the
// defaults.
var streams = []*Stream{
	{file: os.Stdout, fd: int(os.Stdout.Fd()), severity: sink.SeverityInfo, tag: "native.stdout", pipe: [2]int{-1, -1}},
	{file: os.Stderr, fd: int(os.Stderr.Fd()), severity: sink.SeverityWarn, tag: "native.stderr", pipe: [2]int{-1, -1}},
}

// Option adjusts the static stream table before redirection.
type Option func(*Redirector)

// WithStdout overrides the tag and severity stamped on captured stdout.
func WithStdout(tag string, severity sink.Severity) Option {
	return func(r *Redirector) { r.configure(0, tag, severity) }
}

// WithStderr overrides the tag and severity stamped on captured stderr.
func WithStderr(tag string, severity sink.Severity) Option {
	return func(r *Redirector) { r.configure(1, tag, severity) }
}

// Redirector owns the redirection of the standard streams into the provided
// sink.
type Redirector struct {
	sink    sink.Sink
	streams []*Stream
}

// New constructs a redirector targeting the process's standard streams. The
// default table is copied, so options configure this redirector only.
func New(s sink.Sink, opts ...Option) *Redirector {
	table := make([]*Stream, len(streams))
	for i, def := range streams {
		clone := *def
		table[i] = &clone
	}
	r := &Redirector{sink: s, streams: table}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redirector) configure(index int, tag string, severity sink.Severity) {
	if index < 0 || index >= len(r.streams) {
		return
	}
	if tag != "" {
		r.streams[index].tag = tag
	}
	r.streams[index].severity = severity
}

// RedirectAll redirects every stream in table order. The first failing step
// aborts with an error naming that step and the underlying OS error; streams
// redirected before the failure remain redirected. RedirectAll is not
// idempotent: a second call would duplicate pipes and descriptors, so it must
// be invoked exactly once, at startup, before concurrent activity begins.
func (r *Redirector) RedirectAll() error {
	for _, s := range r.streams {
		if err := r.redirectStream(s); err != nil {
			return fmt.Errorf("%s: %w", s.tag, err)
		}
	}
	return nil
}
